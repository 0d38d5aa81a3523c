// Package events carries the domain events the contract publishes after a
// call commits.
package events

import (
	"context"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

const (
	ContractInitialized = "ContractInitialized"
	PauseChanged        = "PauseChanged"
	EmergencyWithdraw   = "EmergencyWithdraw"

	GiveawayCreated   = "GiveawayCreated"
	GiveawayEntered   = "GiveawayEntered"
	WinnerSelected    = "WinnerSelected"
	PrizeDistributed  = "PrizeDistributed"
	GiveawayCancelled = "GiveawayCancelled"

	HelpRequestCreated = "HelpRequestCreated"
	DonationReceived   = "DonationReceived"
	HelpRequestFunded  = "HelpRequestFunded"
	RequestCancelled   = "RequestCancelled"
	RefundClaimed      = "RefundClaimed"
	FundsWithdrawn     = "FundsWithdrawn"

	TokensMinted = "TokensMinted"
)

// Field names that hold account addresses; the indexer keys feeds on them.
var AccountFields = []string{"admin", "creator", "participant", "winner", "donor", "to"}

type Event struct {
	Topic      string            `json:"topic"`
	LedgerTime uint64            `json:"ledger_time"`
	Fields     map[string]string `json:"fields"`
}

func (e Event) Uint(field string) (uint64, bool) {
	v, err := strconv.ParseUint(e.Fields[field], 10, 64)
	return v, err == nil
}

// Sink publishes committed events. Delivery guarantees are the sink's own.
type Sink interface {
	Publish(ctx context.Context, evs ...Event) error
}

// Memory keeps published events in order. Safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Publish(ctx context.Context, evs ...Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evs...)
	return nil
}

func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// Topics lists the topics published so far, in order.
func (m *Memory) Topics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	topics := make([]string, 0, len(m.events))
	for _, ev := range m.events {
		topics = append(topics, ev.Topic)
	}
	return topics
}

// Log writes events to a zerolog logger.
type Log struct {
	log zerolog.Logger
}

func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Publish(ctx context.Context, evs ...Event) error {
	for _, ev := range evs {
		entry := l.log.Info().Str("topic", ev.Topic).Uint64("ledger_time", ev.LedgerTime)
		for k, v := range ev.Fields {
			entry = entry.Str(k, v)
		}
		entry.Msg("Event published")
	}
	return nil
}
