package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Txn overlays buffered writes on a Reader. It is not safe for concurrent
// use; the contract host gives each call its own.
type Txn struct {
	base   Reader
	writes map[string]Write
	order  []string
}

func NewTxn(base Reader) *Txn {
	return &Txn{
		base:   base,
		writes: make(map[string]Write),
	}
}

func (t *Txn) Get(ctx context.Context, key Key) ([]byte, error) {
	if w, ok := t.writes[Name(key)]; ok {
		return w.Value, nil
	}
	return t.base.Get(ctx, key)
}

func (t *Txn) Has(ctx context.Context, key Key) (bool, error) {
	if _, ok := t.writes[Name(key)]; ok {
		return true, nil
	}
	return t.base.Has(ctx, key)
}

// Set buffers a write. A later Set of the same key replaces the earlier one.
func (t *Txn) Set(key Key, value []byte) {
	name := Name(key)
	if _, ok := t.writes[name]; !ok {
		t.order = append(t.order, name)
	}
	t.writes[name] = Write{Key: key, Value: value}
}

// SetJSON marshals value and buffers it under key.
func (t *Txn) SetJSON(key Key, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", Name(key), err)
	}
	t.Set(key, data)
	return nil
}

// Writes returns the buffered writes in first-write order.
func (t *Txn) Writes() []Write {
	out := make([]Write, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.writes[name])
	}
	return out
}

func (t *Txn) Len() int {
	return len(t.order)
}
