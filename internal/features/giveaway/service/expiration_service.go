package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "geev-escrow/internal/common/errors"
	"geev-escrow/internal/features/giveaway/models"
)

const (
	// Интервал проверки розыгрышей
	CheckInterval = 10 * time.Second
	// Таймаут обработки одного прохода
	ProcessingTimeout = 2 * time.Minute
)

// Clock is the subset of the ledger clock the drawer needs.
type Clock interface {
	Now() uint64
}

// ExpirationService draws winners for expired random and first-come
// giveaways and pushes their prizes, so nobody has to trigger it by hand.
type ExpirationService struct {
	ctx      context.Context
	cancel   context.CancelFunc
	giveaway GiveawayService
	clock    Clock
	interval time.Duration
	logger   zerolog.Logger
	wg       sync.WaitGroup

	mu sync.Mutex
	// lowWater is the smallest id that may still need work.
	lowWater uint64
}

func NewExpirationService(giveaway GiveawayService, clock Clock, interval time.Duration, logger zerolog.Logger) *ExpirationService {
	if interval <= 0 {
		interval = CheckInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ExpirationService{
		ctx:      ctx,
		cancel:   cancel,
		giveaway: giveaway,
		clock:    clock,
		interval: interval,
		logger:   logger,
		lowWater: 1,
	}
}

func (s *ExpirationService) Start() {
	s.logger.Info().Dur("interval", s.interval).Msg("Starting expiration service")
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(s.ctx, ProcessingTimeout)
				if err := s.ProcessExpiredGiveaways(ctx); err != nil {
					s.logger.Error().Err(err).Msg("Error processing expired giveaways")
				}
				cancel()
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

func (s *ExpirationService) Stop() {
	s.logger.Info().Msg("Stopping expiration service")
	s.cancel()
	s.wg.Wait()
}

// ProcessExpiredGiveaways makes one pass over every giveaway that may still
// need a draw or a payout.
func (s *ExpirationService) ProcessExpiredGiveaways(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, err := s.giveaway.LastID(ctx)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	settledPrefix := true
	for id := s.lowWater; id <= last; id++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		giveaway, err := s.giveaway.GetByID(ctx, id)
		if err != nil {
			return err
		}

		done := s.process(ctx, giveaway, now)
		if settledPrefix && done {
			s.lowWater = id + 1
		} else {
			settledPrefix = false
		}
	}
	return nil
}

// process advances one giveaway and reports whether it needs no more work.
func (s *ExpirationService) process(ctx context.Context, giveaway *models.Giveaway, now uint64) bool {
	switch giveaway.Status {
	case models.GiveawayStatusCompleted, models.GiveawayStatusCancelled:
		return true
	case models.GiveawayStatusClaimable:
		return s.distribute(ctx, giveaway.ID)
	}

	if now <= giveaway.EndTime || giveaway.ParticipantCount == 0 {
		return false
	}
	if giveaway.SelectionMethod == models.SelectionManual {
		return false
	}

	winner, err := s.giveaway.PickWinner(ctx, giveaway.ID)
	if err != nil {
		s.logger.Warn().Err(err).Uint64("giveaway_id", giveaway.ID).Msg("Failed to draw winner")
		return false
	}
	s.logger.Debug().Uint64("giveaway_id", giveaway.ID).Str("winner", winner.String()).Msg("Drew winner for expired giveaway")
	return s.distribute(ctx, giveaway.ID)
}

func (s *ExpirationService) distribute(ctx context.Context, giveawayID uint64) bool {
	err := s.giveaway.DistributePrize(ctx, giveawayID)
	if err == nil {
		return true
	}
	// Someone else settled it in between.
	if apperrors.HasCode(err, apperrors.ErrCodeInvalidStatus) {
		return true
	}
	s.logger.Warn().Err(err).Uint64("giveaway_id", giveawayID).Msg("Failed to distribute prize")
	return false
}
