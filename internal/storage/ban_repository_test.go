package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanRepositoryBanUnbanRoundTrip(t *testing.T) {
	repo := NewBanRepository(openTestDB(t))
	ctx := context.Background()

	banned, err := repo.IsBanned(ctx, 42)
	require.NoError(t, err)
	assert.False(t, banned)

	require.NoError(t, repo.Ban(ctx, 42, "spam"))

	banned, err = repo.IsBanned(ctx, 42)
	require.NoError(t, err)
	assert.True(t, banned)

	require.NoError(t, repo.Unban(ctx, 42))

	banned, err = repo.IsBanned(ctx, 42)
	require.NoError(t, err)
	assert.False(t, banned)
}

func TestBanRepositoryRebanUpdatesReason(t *testing.T) {
	repo := NewBanRepository(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Ban(ctx, 7, "first"))
	// Re-ban must upsert, not error on the primary key
	require.NoError(t, repo.Ban(ctx, 7, "second"))

	record, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "second", record.Reason)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestBanRepositoryUnbanNeverBannedIsNoop(t *testing.T) {
	repo := NewBanRepository(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Unban(ctx, 999))

	record, err := repo.Get(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestBanRepositoryCount(t *testing.T) {
	repo := NewBanRepository(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Ban(ctx, 1, "a"))
	require.NoError(t, repo.Ban(ctx, 2, "b"))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
