package models

import "time"

// Message types stored with a submission.
const (
	TypeText      = "text"
	TypePhoto     = "photo"
	TypeVideo     = "video"
	TypeVoice     = "voice"
	TypeAnimation = "animation"
	TypeSticker   = "sticker"
	TypeDocument  = "document"
	TypeOther     = "other"
)

// Submission correlates an anonymously relayed message with its
// channel post and the moderation card in the admin group.
// GroupMessageID is the moderation lookup key: pressing a card
// button resolves the submission through it.
type Submission struct {
	ID               uint   `gorm:"primaryKey;autoIncrement"`
	UserID           int64  `gorm:"index;not null"`
	Username         string `gorm:"size:64"`
	FirstName        string `gorm:"size:128"`
	LastName         string `gorm:"size:128"`
	MessageType      string `gorm:"size:16;not null"`
	ContentText      string `gorm:"type:text"`
	MediaFileID      string `gorm:"size:256"`
	ChannelUsername  string `gorm:"size:64;not null"`
	ChannelMessageID int    `gorm:"not null"`
	GroupMessageID   int    `gorm:"uniqueIndex;not null"`
	CreatedAt        time.Time
}

// FullName joins the sender's first and last names, falling back
// to "-" when the profile carries neither.
func (s *Submission) FullName() string {
	switch {
	case s.FirstName != "" && s.LastName != "":
		return s.FirstName + " " + s.LastName
	case s.FirstName != "":
		return s.FirstName
	case s.LastName != "":
		return s.LastName
	}
	return "-"
}
