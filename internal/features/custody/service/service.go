// Package service exposes the custody ledger: balance lookups and the
// development faucet.
package service

import (
	"context"

	"github.com/rs/zerolog"

	"geev-escrow/internal/account"
	apperrors "geev-escrow/internal/common/errors"
	"geev-escrow/internal/contract"
	"geev-escrow/internal/events"
	"geev-escrow/internal/money"
	"geev-escrow/internal/token"
)

type CustodyService interface {
	Balance(ctx context.Context, tok account.Token, acct account.Address) (money.Amount, error)
	// Mint credits test funds; it fails unless the faucet is enabled.
	Mint(ctx context.Context, tok account.Token, to account.Address, amount money.Amount) (money.Amount, error)
}

type custodyService struct {
	host          *contract.Host
	faucetEnabled bool
	logger        zerolog.Logger
}

func NewCustodyService(host *contract.Host, faucetEnabled bool, logger zerolog.Logger) CustodyService {
	return &custodyService{
		host:          host,
		faucetEnabled: faucetEnabled,
		logger:        logger,
	}
}

func (s *custodyService) Balance(ctx context.Context, tok account.Token, acct account.Address) (money.Amount, error) {
	return token.BalanceOf(ctx, s.host.Reader(), tok, acct)
}

func (s *custodyService) Mint(ctx context.Context, tok account.Token, to account.Address, amount money.Amount) (money.Amount, error) {
	if !s.faucetEnabled {
		return money.Zero(), apperrors.New(apperrors.ErrCodeNotFound, "faucet is disabled")
	}
	if amount.IsZero() {
		return money.Zero(), apperrors.New(apperrors.ErrCodeInvalidAmount, "mint amount must be positive")
	}

	var balance money.Amount
	err := s.host.Invoke(ctx, "mint", func(env *contract.Env) error {
		if err := env.RequireAuth(to); err != nil {
			return err
		}
		credited, err := token.NewLedger(env.Store()).Mint(env.Context(), tok, to, amount)
		if err != nil {
			return err
		}
		env.Emit(events.TokensMinted, map[string]string{
			"to":     to.String(),
			"amount": amount.String(),
			"token":  tok.String(),
		})
		balance = credited
		return nil
	})
	if err != nil {
		return money.Zero(), err
	}

	s.logger.Debug().
		Str("to", to.String()).
		Str("amount", amount.String()).
		Str("token", tok.String()).
		Msg("Faucet mint")
	return balance, nil
}
