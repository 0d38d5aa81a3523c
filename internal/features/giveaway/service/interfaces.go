package service

import (
	"context"

	"geev-escrow/internal/account"
	"geev-escrow/internal/features/giveaway/models"
)

// GiveawayService defines the giveaway state machine operations
type GiveawayService interface {
	Create(ctx context.Context, input *models.GiveawayCreate) (uint64, error)
	Enter(ctx context.Context, participant account.Address, giveawayID uint64, content string) (uint64, error)
	PickWinner(ctx context.Context, giveawayID uint64) (account.Address, error)
	ChooseWinner(ctx context.Context, creator account.Address, giveawayID uint64, index uint32) (account.Address, error)
	DistributePrize(ctx context.Context, giveawayID uint64) error
	ClaimPrize(ctx context.Context, giveawayID uint64, claimer account.Address) error
	Cancel(ctx context.Context, creator account.Address, giveawayID uint64) error

	GetByID(ctx context.Context, giveawayID uint64) (*models.Giveaway, error)
	GetParticipantAtIndex(ctx context.Context, giveawayID uint64, index uint32) (account.Address, error)
	GetEntry(ctx context.Context, entryID uint64) (*models.Entry, error)
	HasEntered(ctx context.Context, giveawayID uint64, participant account.Address) (uint64, bool, error)
	LastID(ctx context.Context) (uint64, error)
}

// ExpirationServiceInterface defines the background drawer of expired giveaways
type ExpirationServiceInterface interface {
	Start()
	Stop()
	ProcessExpiredGiveaways(ctx context.Context) error
}
