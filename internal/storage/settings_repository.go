package storage

import (
	"context"
	"fmt"

	"tg-anonpost/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository handles database operations for Setting
type SettingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// MigrateTable ensures the Setting table exists
func (r *SettingsRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.Setting{})
}

func recognizedKey(key string) bool {
	return key == models.SettingChannelUsername || key == models.SettingGroupChatID
}

// Get returns the value for a key and whether it is set
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	if !recognizedKey(key) {
		return "", false, fmt.Errorf("unrecognized setting key: %s", key)
	}
	var setting models.Setting
	err := withTimeout(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return setting.Value, true, nil
}

// Set upserts a setting. Only the two recognized keys are accepted;
// anything else is a configuration mistake and is rejected.
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	if !recognizedKey(key) {
		return fmt.Errorf("unrecognized setting key: %s", key)
	}
	return withTimeout(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).Create(&models.Setting{Key: key, Value: value}).Error
	})
}
