package storage

import (
	"context"

	"tg-anonpost/internal/models"

	"gorm.io/gorm"
)

// Stats aggregates ledger counters for the /stats command
type Stats struct {
	TotalSubmissions int64
	UniqueUsers      int64
	BannedUsers      int64
}

// UserSummary is one row of the /users listing: the latest known
// identity of a sender, ordered by most recent submission.
type UserSummary struct {
	UserID    int64
	Username  string
	FirstName string
	LastName  string
	LastAt    string
}

// SubmissionRepository handles database operations for Submission
type SubmissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new SubmissionRepository
func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// MigrateTable ensures the Submission table exists
func (r *SubmissionRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.Submission{})
}

// Record inserts a new submission and returns its surrogate key
func (r *SubmissionRepository) Record(ctx context.Context, sub *models.Submission) (uint, error) {
	err := withTimeout(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Create(sub).Error
	})
	if err != nil {
		return 0, err
	}
	return sub.ID, nil
}

// FindByGroupMessage resolves a submission by its moderation card
// message ID. Returns nil when no live submission matches, which
// is how double-clicked cards degrade to "already handled".
func (r *SubmissionRepository) FindByGroupMessage(ctx context.Context, groupMessageID int) (*models.Submission, error) {
	var sub models.Submission
	err := withTimeout(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Where("group_message_id = ?", groupMessageID).First(&sub).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// FindByUser returns all submissions from a user, newest first
func (r *SubmissionRepository) FindByUser(ctx context.Context, userID int64) ([]*models.Submission, error) {
	var subs []*models.Submission
	err := withTimeout(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&subs).Error
	})
	return subs, err
}

// FindByUsername returns all submissions matching a username
// (case-insensitive), newest first
func (r *SubmissionRepository) FindByUsername(ctx context.Context, username string) ([]*models.Submission, error) {
	var subs []*models.Submission
	err := withTimeout(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Where("LOWER(username) = LOWER(?)", username).Order("created_at DESC").Find(&subs).Error
	})
	return subs, err
}

// Delete removes a submission by surrogate key; absent is a no-op
// so racing admin clicks never error
func (r *SubmissionRepository) Delete(ctx context.Context, id uint) error {
	return withTimeout(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Delete(&models.Submission{}, id).Error
	})
}

// ListUsers returns unique senders with their latest identity,
// most recent sender first
func (r *SubmissionRepository) ListUsers(ctx context.Context) ([]*UserSummary, error) {
	var userIDs []int64
	err := withTimeout(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Model(&models.Submission{}).
			Select("user_id").
			Group("user_id").
			Order("MAX(created_at) DESC").
			Pluck("user_id", &userIDs).Error
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]*UserSummary, 0, len(userIDs))
	for _, userID := range userIDs {
		var latest models.Submission
		err := withTimeout(ctx, func(ctx context.Context) error {
			return r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").First(&latest).Error
		})
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &UserSummary{
			UserID:    userID,
			Username:  latest.Username,
			FirstName: latest.FirstName,
			LastName:  latest.LastName,
			LastAt:    latest.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return summaries, nil
}

// GetStats returns the aggregate counters shown by /stats
func (r *SubmissionRepository) GetStats(ctx context.Context, bans *BanRepository) (*Stats, error) {
	stats := &Stats{}

	err := withTimeout(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Model(&models.Submission{}).Count(&stats.TotalSubmissions).Error
	})
	if err != nil {
		return nil, err
	}
	err = withTimeout(ctx, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Model(&models.Submission{}).Distinct("user_id").Count(&stats.UniqueUsers).Error
	})
	if err != nil {
		return nil, err
	}

	banned, err := bans.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.BannedUsers = banned

	return stats, nil
}
