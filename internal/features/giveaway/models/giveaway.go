package models

import (
	"strings"

	"geev-escrow/internal/account"
	apperrors "geev-escrow/internal/common/errors"
	"geev-escrow/internal/common/validation"
	"geev-escrow/internal/money"
)

// GiveawayStatus represents the status of a giveaway
type GiveawayStatus string

const (
	GiveawayStatusActive    GiveawayStatus = "active"    // Accepting entries until end_time
	GiveawayStatusClaimable GiveawayStatus = "claimable" // Winner drawn, prize still in custody
	GiveawayStatusCompleted GiveawayStatus = "completed" // Prize paid out
	GiveawayStatusCancelled GiveawayStatus = "cancelled" // Prize returned to the creator
)

// SelectionMethod decides how the winner index is chosen.
type SelectionMethod string

const (
	SelectionRandom    SelectionMethod = "random"
	SelectionFirstCome SelectionMethod = "first_come"
	SelectionManual    SelectionMethod = "manual"
)

func (m SelectionMethod) Valid() bool {
	switch m {
	case SelectionRandom, SelectionFirstCome, SelectionManual:
		return true
	}
	return false
}

// MaxContentLength caps the free-form content of an entry.
const MaxContentLength = 1024

// Giveaway is the persisted campaign record.
type Giveaway struct {
	ID               uint64           `json:"id"`
	Status           GiveawayStatus   `json:"status"`
	Creator          account.Address  `json:"creator"`
	Token            account.Token    `json:"token"`
	Amount           money.Amount     `json:"amount" swaggertype:"string" example:"500"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Category         string           `json:"category"`
	SelectionMethod  SelectionMethod  `json:"selection_method"`
	WinnerCount      uint32           `json:"winner_count"`
	ParticipantCount uint32           `json:"participant_count"`
	EndTime          uint64           `json:"end_time"`
	CreatedAt        uint64           `json:"created_at"`
	Winner           *account.Address `json:"winner,omitempty"`
}

// Entry is one participant's registration.
type Entry struct {
	ID          uint64          `json:"id"`
	GiveawayID  uint64          `json:"giveaway_id"`
	Participant account.Address `json:"participant"`
	Index       uint32          `json:"index"`
	EntryTime   uint64          `json:"entry_time"`
	Content     string          `json:"content"`
	IsWinner    bool            `json:"is_winner"`
}

// GiveawayCreate is the input of create_giveaway.
type GiveawayCreate struct {
	Creator         account.Address
	Token           account.Token
	Amount          money.Amount
	Title           string
	Description     string
	Category        string
	SelectionMethod SelectionMethod
	WinnerCount     uint32
	Duration        uint64 // seconds
}

// Normalize trims text and applies defaults.
func (in *GiveawayCreate) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if in.SelectionMethod == "" {
		in.SelectionMethod = SelectionRandom
	}
	if in.WinnerCount == 0 {
		in.WinnerCount = 1
	}
}

func (in *GiveawayCreate) Validate() error {
	if in.Amount.IsZero() {
		return apperrors.New(apperrors.ErrCodeInvalidAmount, "prize amount must be positive")
	}
	if in.Duration == 0 {
		return apperrors.NewValidationError("duration", "must be positive")
	}
	if err := validation.ValidateTitle(in.Title); err != nil {
		return err
	}
	if err := validation.ValidateDescription(in.Description); err != nil {
		return err
	}
	if err := validation.ValidateCategory(in.Category); err != nil {
		return err
	}
	if !in.SelectionMethod.Valid() {
		return apperrors.NewValidationError("selection_method", "must be one of random, first_come, manual")
	}
	if in.WinnerCount != 1 {
		return apperrors.NewValidationError("winner_count", "only single-winner giveaways are supported")
	}
	return nil
}
