package contract

import (
	"fmt"

	"geev-escrow/internal/account"
	"geev-escrow/internal/storage"
)

// Instance-tier keys.
type (
	AdminKey              struct{}
	PausedKey             struct{}
	GiveawayCounterKey    struct{}
	EntryCounterKey       struct{}
	HelpRequestCounterKey struct{}
)

func (AdminKey) Tier() storage.Tier              { return storage.TierInstance }
func (AdminKey) String() string                  { return "admin" }
func (PausedKey) Tier() storage.Tier             { return storage.TierInstance }
func (PausedKey) String() string                 { return "paused" }
func (GiveawayCounterKey) Tier() storage.Tier    { return storage.TierInstance }
func (GiveawayCounterKey) String() string        { return "counter:giveaway" }
func (EntryCounterKey) Tier() storage.Tier       { return storage.TierInstance }
func (EntryCounterKey) String() string           { return "counter:entry" }
func (HelpRequestCounterKey) Tier() storage.Tier { return storage.TierInstance }
func (HelpRequestCounterKey) String() string     { return "counter:help_request" }

// GiveawayKey holds a giveaway record.
type GiveawayKey struct{ ID uint64 }

func (GiveawayKey) Tier() storage.Tier { return storage.TierPersistent }
func (k GiveawayKey) String() string   { return fmt.Sprintf("giveaway:%d", k.ID) }

// EntryKey holds an entry record by its sequential id.
type EntryKey struct{ ID uint64 }

func (EntryKey) Tier() storage.Tier { return storage.TierPersistent }
func (k EntryKey) String() string   { return fmt.Sprintf("entry:%d", k.ID) }

// ParticipantIndexKey maps the dense index [0, participant_count) of a
// giveaway to the participant address.
type ParticipantIndexKey struct {
	GiveawayID uint64
	Index      uint32
}

func (ParticipantIndexKey) Tier() storage.Tier { return storage.TierPersistent }
func (k ParticipantIndexKey) String() string {
	return fmt.Sprintf("giveaway:%d:participant:%d", k.GiveawayID, k.Index)
}

// HasEnteredKey marks a participant of a giveaway; its value is the entry id.
type HasEnteredKey struct {
	GiveawayID  uint64
	Participant account.Address
}

func (HasEnteredKey) Tier() storage.Tier { return storage.TierPersistent }
func (k HasEnteredKey) String() string {
	return fmt.Sprintf("giveaway:%d:entered:%s", k.GiveawayID, k.Participant)
}

// HelpRequestKey holds a mutual-aid request record.
type HelpRequestKey struct{ ID uint64 }

func (HelpRequestKey) Tier() storage.Tier { return storage.TierPersistent }
func (k HelpRequestKey) String() string   { return fmt.Sprintf("help_request:%d", k.ID) }

// DonationKey holds the cumulative unrefunded donation of a donor.
type DonationKey struct {
	RequestID uint64
	Donor     account.Address
}

func (DonationKey) Tier() storage.Tier { return storage.TierPersistent }
func (k DonationKey) String() string {
	return fmt.Sprintf("help_request:%d:donation:%s", k.RequestID, k.Donor)
}

// BalanceKey holds a custody ledger balance.
type BalanceKey struct {
	Token   account.Token
	Account account.Address
}

func (BalanceKey) Tier() storage.Tier { return storage.TierPersistent }
func (k BalanceKey) String() string   { return fmt.Sprintf("balance:%s:%s", k.Token, k.Account) }
