package models

import (
	"strings"

	"geev-escrow/internal/account"
	apperrors "geev-escrow/internal/common/errors"
	"geev-escrow/internal/common/validation"
	"geev-escrow/internal/money"
)

// HelpRequestStatus represents the status of a help request
type HelpRequestStatus string

const (
	HelpRequestStatusOpen        HelpRequestStatus = "open"         // Accepting donations
	HelpRequestStatusFullyFunded HelpRequestStatus = "fully_funded" // Goal reached, waiting for withdrawal
	HelpRequestStatusCancelled   HelpRequestStatus = "cancelled"    // Donors may claim refunds
	HelpRequestStatusClosed      HelpRequestStatus = "closed"       // Funds withdrawn by the creator
)

type HelpRequest struct {
	ID           uint64            `json:"id"`
	Status       HelpRequestStatus `json:"status"`
	Creator      account.Address   `json:"creator"`
	Token        account.Token     `json:"token"`
	Goal         money.Amount      `json:"goal" swaggertype:"string" example:"1000"`
	RaisedAmount money.Amount      `json:"raised_amount" swaggertype:"string" example:"300"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	DonorCount   uint32            `json:"donor_count"`
	CreatedAt    uint64            `json:"created_at"`
}

// HelpRequestCreate is the input of create_help_request.
type HelpRequestCreate struct {
	Creator     account.Address
	Token       account.Token
	Goal        money.Amount
	Title       string
	Description string
}

func (in *HelpRequestCreate) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if in.Goal.IsZero() {
		return apperrors.New(apperrors.ErrCodeInvalidAmount, "goal must be positive")
	}
	if err := validation.ValidateTitle(in.Title); err != nil {
		return err
	}
	if err := validation.ValidateDescription(in.Description); err != nil {
		return err
	}
	return nil
}
