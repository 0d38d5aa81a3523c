package service

import (
	"context"

	"github.com/rs/zerolog"

	"geev-escrow/internal/account"
	apperrors "geev-escrow/internal/common/errors"
	"geev-escrow/internal/events"
	"geev-escrow/internal/features/activity/models"
	"geev-escrow/internal/features/activity/repository"
)

const (
	DefaultFeedLimit        = 20
	DefaultLeaderboardLimit = 50
	MaxLimit                = 100
)

// scorers names the field whose account earns a leaderboard point per topic.
var scorers = map[string]string{
	events.GiveawayCreated:    "creator",
	events.GiveawayEntered:    "participant",
	events.WinnerSelected:     "winner",
	events.HelpRequestCreated: "creator",
	events.DonationReceived:   "donor",
}

type ActivityService interface {
	HandleEvent(ctx context.Context, ev events.Event) error
	Feed(ctx context.Context, addr account.Address, page, limit int) (*models.FeedPage, error)
	Leaderboard(ctx context.Context, page, limit int) (*models.LeaderboardPage, error)
}

type activityService struct {
	repo   repository.ActivityRepository
	logger zerolog.Logger
}

func NewActivityService(repo repository.ActivityRepository, logger zerolog.Logger) ActivityService {
	return &activityService{repo: repo, logger: logger}
}

// HandleEvent indexes one event: every account it names gets it in its feed.
func (s *activityService) HandleEvent(ctx context.Context, ev events.Event) error {
	seen := make(map[string]bool)
	var accounts []string
	for _, field := range events.AccountFields {
		addr := ev.Fields[field]
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		accounts = append(accounts, addr)
	}

	var scored []string
	if field, ok := scorers[ev.Topic]; ok && ev.Fields[field] != "" {
		scored = append(scored, ev.Fields[field])
	}

	item := models.Item{Topic: ev.Topic, LedgerTime: ev.LedgerTime, Fields: ev.Fields}
	if err := s.repo.Record(ctx, item, accounts, scored); err != nil {
		return apperrors.NewStorageError("record activity", err)
	}
	s.logger.Debug().Str("topic", ev.Topic).Int("accounts", len(accounts)).Msg("Activity indexed")
	return nil
}

func (s *activityService) Feed(ctx context.Context, addr account.Address, page, limit int) (*models.FeedPage, error) {
	page, limit = normalize(page, limit, DefaultFeedLimit)
	items, total, err := s.repo.Feed(ctx, addr.String(), offset(page, limit), int64(limit))
	if err != nil {
		return nil, apperrors.NewStorageError("get activity feed", err)
	}
	return &models.FeedPage{
		Account: addr.String(),
		Items:   items,
		Page:    page,
		Limit:   limit,
		Total:   total,
	}, nil
}

func (s *activityService) Leaderboard(ctx context.Context, page, limit int) (*models.LeaderboardPage, error) {
	page, limit = normalize(page, limit, DefaultLeaderboardLimit)
	entries, total, err := s.repo.Leaderboard(ctx, offset(page, limit), int64(limit))
	if err != nil {
		return nil, apperrors.NewStorageError("get leaderboard", err)
	}
	return &models.LeaderboardPage{
		Entries: entries,
		Page:    page,
		Limit:   limit,
		Total:   total,
	}, nil
}

func normalize(page, limit, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = def
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func offset(page, limit int) int64 {
	return int64(page-1) * int64(limit)
}
