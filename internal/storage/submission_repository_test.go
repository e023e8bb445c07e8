package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tg-anonpost/internal/models"
)

func newSubmission(userID int64, channelMsgID, groupMsgID int) *models.Submission {
	return &models.Submission{
		UserID:           userID,
		Username:         "sender",
		FirstName:        "Some",
		LastName:         "One",
		MessageType:      models.TypeText,
		ContentText:      "hello",
		ChannelUsername:  "@chan",
		ChannelMessageID: channelMsgID,
		GroupMessageID:   groupMsgID,
	}
}

func TestSubmissionRepositoryRecordAndFind(t *testing.T) {
	repo := NewSubmissionRepository(openTestDB(t))
	ctx := context.Background()

	id, err := repo.Record(ctx, newSubmission(42, 101, 555))
	require.NoError(t, err)
	assert.NotZero(t, id)

	sub, err := repo.FindByGroupMessage(ctx, 555)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, int64(42), sub.UserID)
	assert.Equal(t, 101, sub.ChannelMessageID)
	assert.Equal(t, "@chan", sub.ChannelUsername)
}

func TestSubmissionRepositoryFindByGroupMessageMiss(t *testing.T) {
	repo := NewSubmissionRepository(openTestDB(t))

	sub, err := repo.FindByGroupMessage(context.Background(), 1234)
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestSubmissionRepositoryHonorsContext(t *testing.T) {
	repo := NewSubmissionRepository(openTestDB(t))

	// Dead context stands in for a database that never answers;
	// the call must surface the context error instead of hanging
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.FindByGroupMessage(ctx, 555)
	require.ErrorIs(t, err, context.Canceled)

	_, err = repo.Record(ctx, newSubmission(42, 101, 555))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSubmissionRepositoryFindByUserNewestFirst(t *testing.T) {
	repo := NewSubmissionRepository(openTestDB(t))
	ctx := context.Background()

	older := newSubmission(42, 101, 555)
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := newSubmission(42, 102, 556)
	newer.CreatedAt = time.Now()

	_, err := repo.Record(ctx, older)
	require.NoError(t, err)
	_, err = repo.Record(ctx, newer)
	require.NoError(t, err)

	subs, err := repo.FindByUser(ctx, 42)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, 102, subs[0].ChannelMessageID)
	assert.Equal(t, 101, subs[1].ChannelMessageID)
}

func TestSubmissionRepositoryFindByUsernameCaseInsensitive(t *testing.T) {
	repo := NewSubmissionRepository(openTestDB(t))
	ctx := context.Background()

	sub := newSubmission(42, 101, 555)
	sub.Username = "SomeSender"
	_, err := repo.Record(ctx, sub)
	require.NoError(t, err)

	subs, err := repo.FindByUsername(ctx, "somesender")
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestSubmissionRepositoryDeleteIsIdempotent(t *testing.T) {
	repo := NewSubmissionRepository(openTestDB(t))
	ctx := context.Background()

	id, err := repo.Record(ctx, newSubmission(42, 101, 555))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))
	// A second delete of the same row must not error
	require.NoError(t, repo.Delete(ctx, id))

	sub, err := repo.FindByGroupMessage(ctx, 555)
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestSubmissionRepositoryListUsersMostRecentFirst(t *testing.T) {
	repo := NewSubmissionRepository(openTestDB(t))
	ctx := context.Background()

	first := newSubmission(1, 101, 501)
	first.CreatedAt = time.Now().Add(-2 * time.Hour)
	second := newSubmission(2, 102, 502)
	second.CreatedAt = time.Now().Add(-time.Hour)
	third := newSubmission(1, 103, 503)
	third.CreatedAt = time.Now()
	third.Username = "renamed"

	for _, sub := range []*models.Submission{first, second, third} {
		_, err := repo.Record(ctx, sub)
		require.NoError(t, err)
	}

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	// User 1 submitted most recently and shows the latest identity
	assert.Equal(t, int64(1), users[0].UserID)
	assert.Equal(t, "renamed", users[0].Username)
	assert.Equal(t, int64(2), users[1].UserID)
}

func TestSubmissionRepositoryStats(t *testing.T) {
	db := openTestDB(t)
	repo := NewSubmissionRepository(db)
	bans := NewBanRepository(db)
	ctx := context.Background()

	_, err := repo.Record(ctx, newSubmission(1, 101, 501))
	require.NoError(t, err)
	_, err = repo.Record(ctx, newSubmission(1, 102, 502))
	require.NoError(t, err)
	_, err = repo.Record(ctx, newSubmission(2, 103, 503))
	require.NoError(t, err)
	require.NoError(t, bans.Ban(ctx, 3, "spam"))

	stats, err := repo.GetStats(ctx, bans)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalSubmissions)
	assert.Equal(t, int64(2), stats.UniqueUsers)
	assert.Equal(t, int64(1), stats.BannedUsers)
}
