package redis

import (
	"context"
	"encoding/json"
	"fmt"

	go_redis "github.com/redis/go-redis/v9"

	"geev-escrow/internal/features/activity/models"
	"geev-escrow/internal/features/activity/repository"
	"geev-escrow/internal/platform/redis"
)

// FeedLimit caps each account feed; older items are trimmed.
const FeedLimit = 1000

type activityRepository struct {
	client *redis.Client
}

func NewActivityRepository(client *redis.Client) repository.ActivityRepository {
	return &activityRepository{client: client}
}

func (r *activityRepository) feedKey(account string) string {
	return r.client.Key("activity", "feed", account)
}

func (r *activityRepository) leaderboardKey() string {
	return r.client.Key("activity", "leaderboard")
}

func (r *activityRepository) Record(ctx context.Context, item models.Item, accounts []string, scorers []string) error {
	if len(accounts) == 0 && len(scorers) == 0 {
		return nil
	}
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	for _, account := range accounts {
		key := r.feedKey(account)
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, FeedLimit-1)
	}
	for _, account := range scorers {
		pipe.ZIncrBy(ctx, r.leaderboardKey(), 1, account)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record %s: %w", item.Topic, err)
	}
	return nil
}

func (r *activityRepository) Feed(ctx context.Context, account string, offset, count int64) ([]models.Item, int64, error) {
	key := r.feedKey(account)

	pipe := r.client.Pipeline()
	total := pipe.LLen(ctx, key)
	raw := pipe.LRange(ctx, key, offset, offset+count-1)
	if _, err := pipe.Exec(ctx); err != nil && err != go_redis.Nil {
		return nil, 0, err
	}

	items := make([]models.Item, 0, len(raw.Val()))
	for _, data := range raw.Val() {
		var item models.Item
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, total.Val(), nil
}

func (r *activityRepository) Leaderboard(ctx context.Context, offset, count int64) ([]models.LeaderboardEntry, int64, error) {
	key := r.leaderboardKey()

	pipe := r.client.Pipeline()
	total := pipe.ZCard(ctx, key)
	ranked := pipe.ZRevRangeWithScores(ctx, key, offset, offset+count-1)
	if _, err := pipe.Exec(ctx); err != nil && err != go_redis.Nil {
		return nil, 0, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(ranked.Val()))
	for i, z := range ranked.Val() {
		member, _ := z.Member.(string)
		entries = append(entries, models.LeaderboardEntry{
			Rank:    offset + int64(i) + 1,
			Account: member,
			Score:   z.Score,
		})
	}
	return entries, total.Val(), nil
}
