package models

import "time"

// BanRecord marks a user as banned from submitting messages.
// At most one record exists per user; re-banning updates the
// reason and timestamp instead of inserting a second row.
type BanRecord struct {
	UserID   int64  `gorm:"primaryKey"`
	Reason   string `gorm:"type:text"`
	BannedAt time.Time
}
