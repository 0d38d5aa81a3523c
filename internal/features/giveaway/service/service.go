package service

import (
	"context"

	"github.com/rs/zerolog"

	"geev-escrow/internal/account"
	apperrors "geev-escrow/internal/common/errors"
	"geev-escrow/internal/contract"
	"geev-escrow/internal/events"
	"geev-escrow/internal/features/giveaway/models"
)

type giveawayService struct {
	host   *contract.Host
	logger zerolog.Logger
}

func NewGiveawayService(host *contract.Host, logger zerolog.Logger) GiveawayService {
	return &giveawayService{
		host:   host,
		logger: logger,
	}
}

func (s *giveawayService) Create(ctx context.Context, input *models.GiveawayCreate) (uint64, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return 0, err
	}

	var id uint64
	err := s.host.Invoke(ctx, "create_giveaway", func(env *contract.Env) error {
		if err := env.RequireNotPaused(); err != nil {
			return err
		}
		if err := env.RequireAuth(input.Creator); err != nil {
			return err
		}

		now := env.Now()
		endTime := now + input.Duration
		if endTime < now {
			return apperrors.NewOverflowError("end_time")
		}

		// Deposit first: without the prize in custody there is no giveaway.
		if err := env.Custody().Transfer(env.Context(), input.Token, input.Creator, env.Self(), input.Amount); err != nil {
			return err
		}

		newID, err := env.NextID(contract.GiveawayCounterKey{})
		if err != nil {
			return err
		}

		giveaway := &models.Giveaway{
			ID:              newID,
			Status:          models.GiveawayStatusActive,
			Creator:         input.Creator,
			Token:           input.Token,
			Amount:          input.Amount,
			Title:           input.Title,
			Description:     input.Description,
			Category:        input.Category,
			SelectionMethod: input.SelectionMethod,
			WinnerCount:     input.WinnerCount,
			EndTime:         endTime,
			CreatedAt:       now,
		}
		if err := contract.Save(env, contract.GiveawayKey{ID: newID}, giveaway); err != nil {
			return err
		}

		env.Emit(events.GiveawayCreated, map[string]string{
			"giveaway_id": contract.FormatID(newID),
			"creator":     input.Creator.String(),
			"amount":      input.Amount.String(),
			"token":       input.Token.String(),
			"end_time":    contract.FormatID(endTime),
		})
		id = newID
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info().
		Uint64("giveaway_id", id).
		Str("creator", input.Creator.String()).
		Str("amount", input.Amount.String()).
		Str("token", input.Token.String()).
		Msg("Giveaway created")
	return id, nil
}

func (s *giveawayService) Enter(ctx context.Context, participant account.Address, giveawayID uint64, content string) (uint64, error) {
	if len(content) > models.MaxContentLength {
		return 0, apperrors.NewValidationError("content", "is too long")
	}

	var entryID uint64
	err := s.host.Invoke(ctx, "enter_giveaway", func(env *contract.Env) error {
		if err := env.RequireNotPaused(); err != nil {
			return err
		}
		if err := env.RequireAuth(participant); err != nil {
			return err
		}

		giveaway, err := loadGiveaway(env, giveawayID)
		if err != nil {
			return err
		}
		if giveaway.Status != models.GiveawayStatusActive {
			return apperrors.NewInvalidStatusError("giveaway", giveaway.Status, "enter")
		}
		if env.Now() > giveaway.EndTime {
			return apperrors.New(apperrors.ErrCodeGiveawayEnded, "giveaway has ended").
				WithDetail("end_time", giveaway.EndTime)
		}

		enteredKey := contract.HasEnteredKey{GiveawayID: giveawayID, Participant: participant}
		entered, err := env.Store().Has(env.Context(), enteredKey)
		if err != nil {
			return apperrors.NewStorageError("check entry", err)
		}
		if entered {
			return apperrors.New(apperrors.ErrCodeAlreadyEntered, "participant already entered this giveaway").
				WithAccount(participant.String())
		}

		if giveaway.ParticipantCount == ^uint32(0) {
			return apperrors.NewOverflowError("participant_count")
		}
		index := giveaway.ParticipantCount

		newID, err := env.NextID(contract.EntryCounterKey{})
		if err != nil {
			return err
		}
		entry := &models.Entry{
			ID:          newID,
			GiveawayID:  giveawayID,
			Participant: participant,
			Index:       index,
			EntryTime:   env.Now(),
			Content:     content,
		}
		if err := contract.Save(env, contract.EntryKey{ID: newID}, entry); err != nil {
			return err
		}
		if err := contract.Save(env, contract.ParticipantIndexKey{GiveawayID: giveawayID, Index: index}, participant); err != nil {
			return err
		}
		if err := contract.Save(env, enteredKey, newID); err != nil {
			return err
		}

		giveaway.ParticipantCount++
		if err := contract.Save(env, contract.GiveawayKey{ID: giveawayID}, giveaway); err != nil {
			return err
		}

		env.Emit(events.GiveawayEntered, map[string]string{
			"giveaway_id": contract.FormatID(giveawayID),
			"participant": participant.String(),
			"entry_id":    contract.FormatID(newID),
			"index":       contract.FormatID(uint64(index)),
		})
		entryID = newID
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info().
		Uint64("giveaway_id", giveawayID).
		Uint64("entry_id", entryID).
		Str("participant", participant.String()).
		Msg("Giveaway entered")
	return entryID, nil
}

// PickWinner is permissionless: the outcome depends on ledger entropy, not
// on who triggers it.
func (s *giveawayService) PickWinner(ctx context.Context, giveawayID uint64) (account.Address, error) {
	var winner account.Address
	err := s.host.Invoke(ctx, "pick_winner", func(env *contract.Env) error {
		giveaway, err := loadDrawable(env, giveawayID)
		if err != nil {
			return err
		}

		var index uint32
		switch giveaway.SelectionMethod {
		case models.SelectionRandom:
			r, err := env.RandomU64()
			if err != nil {
				return err
			}
			// Modulo bias is at most count/2^64 and accepted.
			index = uint32(r % uint64(giveaway.ParticipantCount))
		case models.SelectionFirstCome:
			index = 0
		default:
			return apperrors.New(apperrors.ErrCodeInvalidSelection, "giveaway winner is chosen by its creator").
				WithDetail("selection_method", giveaway.SelectionMethod)
		}

		winner, err = settleWinner(env, giveaway, index)
		return err
	})
	if err != nil {
		return "", err
	}

	s.logger.Info().
		Uint64("giveaway_id", giveawayID).
		Str("winner", winner.String()).
		Msg("Winner selected")
	return winner, nil
}

func (s *giveawayService) ChooseWinner(ctx context.Context, creator account.Address, giveawayID uint64, index uint32) (account.Address, error) {
	var winner account.Address
	err := s.host.Invoke(ctx, "choose_winner", func(env *contract.Env) error {
		if err := env.RequireAuth(creator); err != nil {
			return err
		}
		giveaway, err := loadGiveaway(env, giveawayID)
		if err != nil {
			return err
		}
		if giveaway.Creator != creator {
			return apperrors.New(apperrors.ErrCodeNotCreator, "only the creator can choose the winner").
				WithAccount(creator.String())
		}
		if giveaway.SelectionMethod != models.SelectionManual {
			return apperrors.New(apperrors.ErrCodeInvalidSelection, "giveaway winner is drawn automatically").
				WithDetail("selection_method", giveaway.SelectionMethod)
		}
		if err := checkDrawable(env, giveaway); err != nil {
			return err
		}
		if index >= giveaway.ParticipantCount {
			return apperrors.New(apperrors.ErrCodeInvalidIndex, "participant index out of range").
				WithDetail("index", index).
				WithDetail("participant_count", giveaway.ParticipantCount)
		}

		winner, err = settleWinner(env, giveaway, index)
		return err
	})
	if err != nil {
		return "", err
	}

	s.logger.Info().
		Uint64("giveaway_id", giveawayID).
		Str("winner", winner.String()).
		Msg("Winner chosen by creator")
	return winner, nil
}

// DistributePrize pushes the prize to the recorded winner; anyone may trigger it.
func (s *giveawayService) DistributePrize(ctx context.Context, giveawayID uint64) error {
	return s.payOut(ctx, "distribute_prize", giveawayID, nil)
}

// ClaimPrize lets the winner pull the prize.
func (s *giveawayService) ClaimPrize(ctx context.Context, giveawayID uint64, claimer account.Address) error {
	return s.payOut(ctx, "claim_prize", giveawayID, &claimer)
}

func (s *giveawayService) payOut(ctx context.Context, op string, giveawayID uint64, claimer *account.Address) error {
	var paid *models.Giveaway
	err := s.host.Invoke(ctx, op, func(env *contract.Env) error {
		if claimer != nil {
			if err := env.RequireAuth(*claimer); err != nil {
				return err
			}
		}
		giveaway, err := loadGiveaway(env, giveawayID)
		if err != nil {
			return err
		}
		if giveaway.Status != models.GiveawayStatusClaimable {
			return apperrors.NewInvalidStatusError("giveaway", giveaway.Status, "prize distribution")
		}
		if giveaway.Winner == nil {
			return apperrors.New(apperrors.ErrCodeInternal, "claimable giveaway has no winner").
				WithDetail("giveaway_id", giveawayID)
		}
		if claimer != nil && *claimer != *giveaway.Winner {
			return apperrors.New(apperrors.ErrCodeNotAuthorized, "only the winner can claim the prize").
				WithAccount(claimer.String())
		}

		if err := env.Custody().Transfer(env.Context(), giveaway.Token, env.Self(), *giveaway.Winner, giveaway.Amount); err != nil {
			return err
		}
		giveaway.Status = models.GiveawayStatusCompleted
		if err := contract.Save(env, contract.GiveawayKey{ID: giveawayID}, giveaway); err != nil {
			return err
		}

		env.Emit(events.PrizeDistributed, map[string]string{
			"giveaway_id": contract.FormatID(giveawayID),
			"winner":      giveaway.Winner.String(),
			"amount":      giveaway.Amount.String(),
			"token":       giveaway.Token.String(),
		})
		paid = giveaway
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Uint64("giveaway_id", giveawayID).
		Str("winner", paid.Winner.String()).
		Str("amount", paid.Amount.String()).
		Str("operation", op).
		Msg("Prize distributed")
	return nil
}

// Cancel returns the prize of a giveaway nobody entered.
func (s *giveawayService) Cancel(ctx context.Context, creator account.Address, giveawayID uint64) error {
	err := s.host.Invoke(ctx, "cancel_giveaway", func(env *contract.Env) error {
		if err := env.RequireAuth(creator); err != nil {
			return err
		}
		giveaway, err := loadGiveaway(env, giveawayID)
		if err != nil {
			return err
		}
		if giveaway.Creator != creator {
			return apperrors.New(apperrors.ErrCodeNotCreator, "only the creator can cancel the giveaway").
				WithAccount(creator.String())
		}
		if giveaway.Status != models.GiveawayStatusActive {
			return apperrors.NewInvalidStatusError("giveaway", giveaway.Status, "cancel")
		}
		if giveaway.ParticipantCount > 0 {
			return apperrors.New(apperrors.ErrCodeInvalidStatus, "giveaway with participants cannot be cancelled").
				WithDetail("participant_count", giveaway.ParticipantCount)
		}

		if err := env.Custody().Transfer(env.Context(), giveaway.Token, env.Self(), giveaway.Creator, giveaway.Amount); err != nil {
			return err
		}
		giveaway.Status = models.GiveawayStatusCancelled
		if err := contract.Save(env, contract.GiveawayKey{ID: giveawayID}, giveaway); err != nil {
			return err
		}

		env.Emit(events.GiveawayCancelled, map[string]string{
			"giveaway_id": contract.FormatID(giveawayID),
			"creator":     creator.String(),
			"amount":      giveaway.Amount.String(),
			"token":       giveaway.Token.String(),
		})
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Uint64("giveaway_id", giveawayID).Msg("Giveaway cancelled")
	return nil
}

func (s *giveawayService) GetByID(ctx context.Context, giveawayID uint64) (*models.Giveaway, error) {
	giveaway, ok, err := contract.View[models.Giveaway](ctx, s.host, contract.GiveawayKey{ID: giveawayID})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewGiveawayNotFoundError(giveawayID)
	}
	return &giveaway, nil
}

func (s *giveawayService) GetParticipantAtIndex(ctx context.Context, giveawayID uint64, index uint32) (account.Address, error) {
	participant, ok, err := contract.View[account.Address](ctx, s.host, contract.ParticipantIndexKey{GiveawayID: giveawayID, Index: index})
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperrors.New(apperrors.ErrCodeInvalidIndex, "no participant at index").
			WithDetail("giveaway_id", giveawayID).
			WithDetail("index", index)
	}
	return participant, nil
}

func (s *giveawayService) GetEntry(ctx context.Context, entryID uint64) (*models.Entry, error) {
	entry, ok, err := contract.View[models.Entry](ctx, s.host, contract.EntryKey{ID: entryID})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrCodeEntryNotFound, "Entry not found: %d", entryID).
			WithDetail("entry_id", entryID)
	}
	return &entry, nil
}

func (s *giveawayService) HasEntered(ctx context.Context, giveawayID uint64, participant account.Address) (uint64, bool, error) {
	return contract.View[uint64](ctx, s.host, contract.HasEnteredKey{GiveawayID: giveawayID, Participant: participant})
}

func (s *giveawayService) LastID(ctx context.Context) (uint64, error) {
	last, _, err := contract.View[uint64](ctx, s.host, contract.GiveawayCounterKey{})
	return last, err
}

func loadGiveaway(env *contract.Env, giveawayID uint64) (*models.Giveaway, error) {
	giveaway, ok, err := contract.Load[models.Giveaway](env, contract.GiveawayKey{ID: giveawayID})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewGiveawayNotFoundError(giveawayID)
	}
	return &giveaway, nil
}

// loadDrawable loads a giveaway whose winner may be selected now.
func loadDrawable(env *contract.Env, giveawayID uint64) (*models.Giveaway, error) {
	giveaway, err := loadGiveaway(env, giveawayID)
	if err != nil {
		return nil, err
	}
	if err := checkDrawable(env, giveaway); err != nil {
		return nil, err
	}
	return giveaway, nil
}

func checkDrawable(env *contract.Env, giveaway *models.Giveaway) error {
	if giveaway.Status != models.GiveawayStatusActive {
		return apperrors.NewInvalidStatusError("giveaway", giveaway.Status, "winner selection")
	}
	if env.Now() <= giveaway.EndTime {
		return apperrors.New(apperrors.ErrCodeGiveawayStillActive, "giveaway is still accepting entries").
			WithDetail("end_time", giveaway.EndTime)
	}
	if giveaway.ParticipantCount == 0 {
		return apperrors.New(apperrors.ErrCodeNoParticipants, "giveaway has no participants")
	}
	return nil
}

// settleWinner records the participant at index as the winner and moves the
// giveaway to claimable.
func settleWinner(env *contract.Env, giveaway *models.Giveaway, index uint32) (account.Address, error) {
	winner, ok, err := contract.Load[account.Address](env, contract.ParticipantIndexKey{GiveawayID: giveaway.ID, Index: index})
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperrors.New(apperrors.ErrCodeInvalidIndex, "participant index is empty").
			WithDetail("giveaway_id", giveaway.ID).
			WithDetail("index", index)
	}

	entryID, ok, err := contract.Load[uint64](env, contract.HasEnteredKey{GiveawayID: giveaway.ID, Participant: winner})
	if err != nil {
		return "", err
	}
	if ok {
		entry, found, err := contract.Load[models.Entry](env, contract.EntryKey{ID: entryID})
		if err != nil {
			return "", err
		}
		if found {
			entry.IsWinner = true
			if err := contract.Save(env, contract.EntryKey{ID: entryID}, entry); err != nil {
				return "", err
			}
		}
	}

	giveaway.Winner = &winner
	giveaway.Status = models.GiveawayStatusClaimable
	if err := contract.Save(env, contract.GiveawayKey{ID: giveaway.ID}, giveaway); err != nil {
		return "", err
	}

	env.Emit(events.WinnerSelected, map[string]string{
		"giveaway_id": contract.FormatID(giveaway.ID),
		"winner":      winner.String(),
		"index":       contract.FormatID(uint64(index)),
		"method":      string(giveaway.SelectionMethod),
	})
	return winner, nil
}
