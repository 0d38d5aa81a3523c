// Package storage is the key/value persistence used by the escrow contract.
//
// Every contract call reads through a Txn that buffers its writes; the host
// hands the buffered writes to Store.Apply in one batch when the call
// succeeds and drops them when it fails.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Tier is the retention class of a key. Backends map it to a key prefix.
type Tier int

const (
	// TierInstance holds small contract-wide settings and counters.
	TierInstance Tier = iota
	// TierPersistent holds per-campaign and per-account records.
	TierPersistent
)

func (t Tier) String() string {
	switch t {
	case TierInstance:
		return "instance"
	case TierPersistent:
		return "persistent"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Key identifies one record.
type Key interface {
	Tier() Tier
	// String is unique among keys of the same tier.
	String() string
}

// Name is the physical name of a key, stable across backends.
func Name(k Key) string {
	return k.Tier().String() + ":" + k.String()
}

var ErrNotFound = errors.New("storage: key not found")

type Reader interface {
	// Get returns ErrNotFound for missing keys.
	Get(ctx context.Context, key Key) ([]byte, error)
	Has(ctx context.Context, key Key) (bool, error)
}

type Write struct {
	Key   Key
	Value []byte
}

type Store interface {
	Reader
	// Apply stores every write or none of them.
	Apply(ctx context.Context, writes []Write) error
	Ping(ctx context.Context) error
	Close() error
}

// GetJSON decodes the record under key. ok is false when the key is missing.
func GetJSON[T any](ctx context.Context, r Reader, key Key) (value T, ok bool, err error) {
	data, err := r.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return value, false, nil
	}
	if err != nil {
		return value, false, fmt.Errorf("failed to get %s: %w", Name(key), err)
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, false, fmt.Errorf("failed to unmarshal %s: %w", Name(key), err)
	}
	return value, true, nil
}
