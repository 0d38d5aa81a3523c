package service

import (
	"context"

	"github.com/rs/zerolog"

	"geev-escrow/internal/account"
	apperrors "geev-escrow/internal/common/errors"
	"geev-escrow/internal/contract"
	"geev-escrow/internal/events"
	"geev-escrow/internal/features/mutualaid/models"
	"geev-escrow/internal/money"
)

type mutualAidService struct {
	host   *contract.Host
	logger zerolog.Logger
}

func NewMutualAidService(host *contract.Host, logger zerolog.Logger) MutualAidService {
	return &mutualAidService{
		host:   host,
		logger: logger,
	}
}

func (s *mutualAidService) Create(ctx context.Context, input *models.HelpRequestCreate) (uint64, error) {
	if err := input.Validate(); err != nil {
		return 0, err
	}

	var id uint64
	err := s.host.Invoke(ctx, "create_help_request", func(env *contract.Env) error {
		if err := env.RequireNotPaused(); err != nil {
			return err
		}
		if err := env.RequireAuth(input.Creator); err != nil {
			return err
		}

		newID, err := env.NextID(contract.HelpRequestCounterKey{})
		if err != nil {
			return err
		}
		request := &models.HelpRequest{
			ID:           newID,
			Status:       models.HelpRequestStatusOpen,
			Creator:      input.Creator,
			Token:        input.Token,
			Goal:         input.Goal,
			RaisedAmount: money.Zero(),
			Title:        input.Title,
			Description:  input.Description,
			CreatedAt:    env.Now(),
		}
		if err := contract.Save(env, contract.HelpRequestKey{ID: newID}, request); err != nil {
			return err
		}

		env.Emit(events.HelpRequestCreated, map[string]string{
			"request_id": contract.FormatID(newID),
			"creator":    input.Creator.String(),
			"goal":       input.Goal.String(),
			"token":      input.Token.String(),
		})
		id = newID
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info().
		Uint64("request_id", id).
		Str("creator", input.Creator.String()).
		Str("goal", input.Goal.String()).
		Msg("Help request created")
	return id, nil
}

func (s *mutualAidService) Donate(ctx context.Context, donor account.Address, requestID uint64, amount money.Amount) error {
	var funded bool
	err := s.host.Invoke(ctx, "donate", func(env *contract.Env) error {
		if err := env.RequireNotPaused(); err != nil {
			return err
		}
		if err := env.RequireAuth(donor); err != nil {
			return err
		}
		if amount.IsZero() {
			return apperrors.New(apperrors.ErrCodeInvalidAmount, "donation must be positive")
		}

		request, err := loadRequest(env, requestID)
		if err != nil {
			return err
		}
		if request.Status != models.HelpRequestStatusOpen {
			return apperrors.NewInvalidStatusError("help request", request.Status, "donations")
		}

		donationKey := contract.DonationKey{RequestID: requestID, Donor: donor}
		previous, existed, err := contract.Load[money.Amount](env, donationKey)
		if err != nil {
			return err
		}

		// Both sums are checked before any funds move.
		newDonation, err := previous.CheckedAdd(amount)
		if err != nil {
			return err
		}
		newRaised, err := request.RaisedAmount.CheckedAdd(amount)
		if err != nil {
			return err
		}

		if err := env.Custody().Transfer(env.Context(), request.Token, donor, env.Self(), amount); err != nil {
			return err
		}

		if err := contract.Save(env, donationKey, newDonation); err != nil {
			return err
		}
		if !existed {
			request.DonorCount++
		}
		request.RaisedAmount = newRaised
		if newRaised.Cmp(request.Goal) >= 0 {
			request.Status = models.HelpRequestStatusFullyFunded
			funded = true
		}
		if err := contract.Save(env, contract.HelpRequestKey{ID: requestID}, request); err != nil {
			return err
		}

		env.Emit(events.DonationReceived, map[string]string{
			"request_id": contract.FormatID(requestID),
			"donor":      donor.String(),
			"amount":     amount.String(),
			"token":      request.Token.String(),
		})
		if funded {
			env.Emit(events.HelpRequestFunded, map[string]string{
				"request_id":    contract.FormatID(requestID),
				"creator":       request.Creator.String(),
				"raised_amount": newRaised.String(),
			})
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Uint64("request_id", requestID).
		Str("donor", donor.String()).
		Str("amount", amount.String()).
		Bool("fully_funded", funded).
		Msg("Donation received")
	return nil
}

func (s *mutualAidService) Cancel(ctx context.Context, creator account.Address, requestID uint64) error {
	err := s.host.Invoke(ctx, "cancel_request", func(env *contract.Env) error {
		if err := env.RequireAuth(creator); err != nil {
			return err
		}
		request, err := loadRequest(env, requestID)
		if err != nil {
			return err
		}
		if request.Creator != creator {
			return apperrors.New(apperrors.ErrCodeNotCreator, "only the creator can cancel the request").
				WithAccount(creator.String())
		}
		if request.Status != models.HelpRequestStatusOpen {
			return apperrors.NewInvalidStatusError("help request", request.Status, "cancel")
		}

		request.Status = models.HelpRequestStatusCancelled
		if err := contract.Save(env, contract.HelpRequestKey{ID: requestID}, request); err != nil {
			return err
		}

		env.Emit(events.RequestCancelled, map[string]string{
			"request_id": contract.FormatID(requestID),
			"creator":    creator.String(),
		})
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Uint64("request_id", requestID).Msg("Help request cancelled")
	return nil
}

// ClaimRefund returns a donor's full contribution to a cancelled request.
// The stored donation is zeroed so a second claim fails.
func (s *mutualAidService) ClaimRefund(ctx context.Context, donor account.Address, requestID uint64) (money.Amount, error) {
	var refunded money.Amount
	err := s.host.Invoke(ctx, "claim_refund", func(env *contract.Env) error {
		if err := env.RequireAuth(donor); err != nil {
			return err
		}
		request, err := loadRequest(env, requestID)
		if err != nil {
			return err
		}
		if request.Status != models.HelpRequestStatusCancelled {
			return apperrors.NewInvalidStatusError("help request", request.Status, "refunds")
		}

		donationKey := contract.DonationKey{RequestID: requestID, Donor: donor}
		amount, _, err := contract.Load[money.Amount](env, donationKey)
		if err != nil {
			return err
		}
		if amount.IsZero() {
			return apperrors.New(apperrors.ErrCodeInvalidAmount, "nothing to refund").
				WithAccount(donor.String())
		}

		newRaised, err := request.RaisedAmount.CheckedSub(amount)
		if err != nil {
			return err
		}

		if err := env.Custody().Transfer(env.Context(), request.Token, env.Self(), donor, amount); err != nil {
			return err
		}
		if err := contract.Save(env, donationKey, money.Zero()); err != nil {
			return err
		}
		request.RaisedAmount = newRaised
		if err := contract.Save(env, contract.HelpRequestKey{ID: requestID}, request); err != nil {
			return err
		}

		env.Emit(events.RefundClaimed, map[string]string{
			"request_id": contract.FormatID(requestID),
			"donor":      donor.String(),
			"amount":     amount.String(),
			"token":      request.Token.String(),
		})
		refunded = amount
		return nil
	})
	if err != nil {
		return money.Zero(), err
	}

	s.logger.Info().
		Uint64("request_id", requestID).
		Str("donor", donor.String()).
		Str("amount", refunded.String()).
		Msg("Refund claimed")
	return refunded, nil
}

// Withdraw pays the raised amount of a fully funded request to its creator.
func (s *mutualAidService) Withdraw(ctx context.Context, creator account.Address, requestID uint64) (money.Amount, error) {
	var withdrawn money.Amount
	err := s.host.Invoke(ctx, "withdraw_funds", func(env *contract.Env) error {
		if err := env.RequireAuth(creator); err != nil {
			return err
		}
		request, err := loadRequest(env, requestID)
		if err != nil {
			return err
		}
		if request.Creator != creator {
			return apperrors.New(apperrors.ErrCodeNotCreator, "only the creator can withdraw funds").
				WithAccount(creator.String())
		}
		if request.Status != models.HelpRequestStatusFullyFunded {
			return apperrors.NewInvalidStatusError("help request", request.Status, "withdrawal")
		}

		if err := env.Custody().Transfer(env.Context(), request.Token, env.Self(), creator, request.RaisedAmount); err != nil {
			return err
		}
		request.Status = models.HelpRequestStatusClosed
		if err := contract.Save(env, contract.HelpRequestKey{ID: requestID}, request); err != nil {
			return err
		}

		env.Emit(events.FundsWithdrawn, map[string]string{
			"request_id": contract.FormatID(requestID),
			"creator":    creator.String(),
			"amount":     request.RaisedAmount.String(),
			"token":      request.Token.String(),
		})
		withdrawn = request.RaisedAmount
		return nil
	})
	if err != nil {
		return money.Zero(), err
	}

	s.logger.Info().
		Uint64("request_id", requestID).
		Str("amount", withdrawn.String()).
		Msg("Funds withdrawn")
	return withdrawn, nil
}

func (s *mutualAidService) GetByID(ctx context.Context, requestID uint64) (*models.HelpRequest, error) {
	request, ok, err := contract.View[models.HelpRequest](ctx, s.host, contract.HelpRequestKey{ID: requestID})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewHelpRequestNotFoundError(requestID)
	}
	return &request, nil
}

// GetDonation returns zero for donors that never gave.
func (s *mutualAidService) GetDonation(ctx context.Context, requestID uint64, donor account.Address) (money.Amount, error) {
	amount, _, err := contract.View[money.Amount](ctx, s.host, contract.DonationKey{RequestID: requestID, Donor: donor})
	return amount, err
}

func loadRequest(env *contract.Env, requestID uint64) (*models.HelpRequest, error) {
	request, ok, err := contract.Load[models.HelpRequest](env, contract.HelpRequestKey{ID: requestID})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewHelpRequestNotFoundError(requestID)
	}
	return &request, nil
}
