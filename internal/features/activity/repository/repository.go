package repository

import (
	"context"

	"geev-escrow/internal/features/activity/models"
)

type ActivityRepository interface {
	// Record appends item to the feed of every account and bumps the
	// leaderboard score of every scorer by one.
	Record(ctx context.Context, item models.Item, accounts []string, scorers []string) error
	Feed(ctx context.Context, account string, offset, count int64) ([]models.Item, int64, error)
	Leaderboard(ctx context.Context, offset, count int64) ([]models.LeaderboardEntry, int64, error)
}
