package storage

import (
	"context"
	"time"

	"tg-anonpost/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BanRepository handles database operations for BanRecord
type BanRepository struct {
	db *gorm.DB
}

// NewBanRepository creates a new BanRepository
func NewBanRepository(db *gorm.DB) *BanRepository {
	return &BanRepository{db: db}
}

// MigrateTable ensures the BanRecord table exists
func (r *BanRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.BanRecord{})
}

// IsBanned reports whether an active ban record exists for the user
func (r *BanRepository) IsBanned(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := withTimeout(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Model(&models.BanRecord{}).Where("user_id = ?", userID).Count(&count).Error
	})
	return count > 0, err
}

// Ban upserts a ban record. Re-banning updates the reason and
// timestamp rather than erroring on the primary key.
func (r *BanRepository) Ban(ctx context.Context, userID int64, reason string) error {
	record := &models.BanRecord{
		UserID:   userID,
		Reason:   reason,
		BannedAt: time.Now(),
	}
	return withTimeout(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"reason", "banned_at"}),
		}).Create(record).Error
	})
}

// Unban removes the ban record if present; absent is not an error
func (r *BanRepository) Unban(ctx context.Context, userID int64) error {
	return withTimeout(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.BanRecord{}).Error
	})
}

// Count returns the number of banned users
func (r *BanRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := withTimeout(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Model(&models.BanRecord{}).Count(&count).Error
	})
	return count, err
}

// Get returns the ban record for a user, or nil when absent
func (r *BanRepository) Get(ctx context.Context, userID int64) (*models.BanRecord, error) {
	var record models.BanRecord
	err := withTimeout(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}
