package service

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"geev-escrow/internal/account"
	apperrors "geev-escrow/internal/common/errors"
	"geev-escrow/internal/contract"
	"geev-escrow/internal/events"
	"geev-escrow/internal/features/admin/models"
	"geev-escrow/internal/money"
)

// AdminService defines the admin controller operations
type AdminService interface {
	Initialize(ctx context.Context, admin account.Address) error
	SetPaused(ctx context.Context, admin account.Address, paused bool) error
	Withdraw(ctx context.Context, tok account.Token, amount money.Amount, to account.Address) error
	Status(ctx context.Context) (*models.Status, error)
}

type adminService struct {
	host   *contract.Host
	logger zerolog.Logger
}

func NewAdminService(host *contract.Host, logger zerolog.Logger) AdminService {
	return &adminService{
		host:   host,
		logger: logger,
	}
}

// Initialize stores the admin once.
func (s *adminService) Initialize(ctx context.Context, admin account.Address) error {
	err := s.host.Invoke(ctx, "initialize", func(env *contract.Env) error {
		if err := env.RequireAuth(admin); err != nil {
			return err
		}
		_, ok, err := contract.LoadAdmin(env.Context(), env.Store())
		if err != nil {
			return err
		}
		if ok {
			return apperrors.New(apperrors.ErrCodeAlreadyInitialized, "contract is already initialized")
		}

		if err := contract.Save(env, contract.AdminKey{}, admin); err != nil {
			return err
		}
		if err := contract.Save(env, contract.PausedKey{}, false); err != nil {
			return err
		}

		env.Emit(events.ContractInitialized, map[string]string{
			"admin": admin.String(),
		})
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("admin", admin.String()).Msg("Contract initialized")
	return nil
}

func (s *adminService) SetPaused(ctx context.Context, admin account.Address, paused bool) error {
	err := s.host.Invoke(ctx, "set_paused", func(env *contract.Env) error {
		if err := env.RequireAuth(admin); err != nil {
			return err
		}
		stored, ok, err := contract.LoadAdmin(env.Context(), env.Store())
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.New(apperrors.ErrCodeNotInitialized, "contract is not initialized")
		}
		if stored != admin {
			return apperrors.New(apperrors.ErrCodeNotAdmin, "caller is not the admin").
				WithAccount(admin.String())
		}

		if err := contract.Save(env, contract.PausedKey{}, paused); err != nil {
			return err
		}
		env.Emit(events.PauseChanged, map[string]string{
			"admin":  admin.String(),
			"paused": strconv.FormatBool(paused),
		})
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Warn().Bool("paused", paused).Str("admin", admin.String()).Msg("Pause flag changed")
	return nil
}

// Withdraw is the emergency exit: it moves custody funds without checking
// any campaign bookkeeping.
func (s *adminService) Withdraw(ctx context.Context, tok account.Token, amount money.Amount, to account.Address) error {
	err := s.host.Invoke(ctx, "admin_withdraw", func(env *contract.Env) error {
		admin, ok, err := contract.LoadAdmin(env.Context(), env.Store())
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.New(apperrors.ErrCodeNotAdmin, "no admin is configured")
		}
		if err := env.RequireAuth(admin); err != nil {
			return err
		}
		if amount.IsZero() {
			return apperrors.New(apperrors.ErrCodeInvalidAmount, "withdraw amount must be positive")
		}

		if err := env.Custody().Transfer(env.Context(), tok, env.Self(), to, amount); err != nil {
			return err
		}
		env.Emit(events.EmergencyWithdraw, map[string]string{
			"token":  tok.String(),
			"amount": amount.String(),
			"to":     to.String(),
		})
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Warn().
		Str("token", tok.String()).
		Str("amount", amount.String()).
		Str("to", to.String()).
		Msg("Emergency withdraw executed")
	return nil
}

func (s *adminService) Status(ctx context.Context) (*models.Status, error) {
	admin, ok, err := contract.LoadAdmin(ctx, s.host.Reader())
	if err != nil {
		return nil, err
	}
	paused, err := contract.IsPaused(ctx, s.host.Reader())
	if err != nil {
		return nil, err
	}
	return &models.Status{
		Initialized: ok,
		Admin:       admin.String(),
		Paused:      paused,
	}, nil
}
