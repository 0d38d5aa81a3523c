package redis

import (
	"context"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	go_redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geev-escrow/internal/features/activity/models"
	"geev-escrow/internal/platform/redis"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *activityRepository) {
	mr := miniredis.RunT(t)
	client := redis.New(go_redis.NewClient(&go_redis.Options{Addr: mr.Addr()}), "test:")
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewActivityRepository(client).(*activityRepository)
}

func item(topic string, at uint64) models.Item {
	return models.Item{Topic: topic, LedgerTime: at, Fields: map[string]string{"n": strconv.FormatUint(at, 10)}}
}

func TestFeedIsNewestFirst(t *testing.T) {
	mr, repo := setupTestRedis(t)
	ctx := context.Background()

	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, repo.Record(ctx, item("GiveawayEntered", i), []string{"alice"}, nil))
	}
	assert.True(t, mr.Exists("test:activity:feed:alice"))

	items, total, err := repo.Feed(ctx, "alice", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 2)
	assert.Equal(t, uint64(3), items[0].LedgerTime)
	assert.Equal(t, uint64(2), items[1].LedgerTime)

	items, _, err = repo.Feed(ctx, "alice", 2, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint64(1), items[0].LedgerTime)
}

func TestFeedIsTrimmed(t *testing.T) {
	_, repo := setupTestRedis(t)
	ctx := context.Background()

	for i := uint64(0); i < FeedLimit+5; i++ {
		require.NoError(t, repo.Record(ctx, item("DonationReceived", i), []string{"bob"}, nil))
	}

	_, total, err := repo.Feed(ctx, "bob", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(FeedLimit), total)
}

func TestFeedOfUnknownAccountIsEmpty(t *testing.T) {
	_, repo := setupTestRedis(t)

	items, total, err := repo.Feed(context.Background(), "nobody", 0, 20)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
}

func TestLeaderboardRanksByScore(t *testing.T) {
	_, repo := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, item("GiveawayCreated", 1), nil, []string{"alice"}))
	require.NoError(t, repo.Record(ctx, item("GiveawayEntered", 2), nil, []string{"bob"}))
	require.NoError(t, repo.Record(ctx, item("WinnerSelected", 3), nil, []string{"bob"}))

	entries, total, err := repo.Leaderboard(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []models.LeaderboardEntry{
		{Rank: 1, Account: "bob", Score: 2},
		{Rank: 2, Account: "alice", Score: 1},
	}, entries)

	entries, _, err = repo.Leaderboard(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].Rank)
}
