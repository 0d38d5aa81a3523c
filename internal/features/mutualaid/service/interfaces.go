package service

import (
	"context"

	"geev-escrow/internal/account"
	"geev-escrow/internal/features/mutualaid/models"
	"geev-escrow/internal/money"
)

// MutualAidService defines the help request state machine operations
type MutualAidService interface {
	Create(ctx context.Context, input *models.HelpRequestCreate) (uint64, error)
	Donate(ctx context.Context, donor account.Address, requestID uint64, amount money.Amount) error
	Cancel(ctx context.Context, creator account.Address, requestID uint64) error
	ClaimRefund(ctx context.Context, donor account.Address, requestID uint64) (money.Amount, error)
	Withdraw(ctx context.Context, creator account.Address, requestID uint64) (money.Amount, error)

	GetByID(ctx context.Context, requestID uint64) (*models.HelpRequest, error)
	GetDonation(ctx context.Context, requestID uint64, donor account.Address) (money.Amount, error)
}
