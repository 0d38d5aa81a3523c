// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geev-escrow/internal/storage"
)

type testKey struct {
	tier storage.Tier
	name string
}

func (k testKey) Tier() storage.Tier { return k.tier }
func (k testKey) String() string     { return k.name }

// Run exercises store against the Store contract.
func Run(t *testing.T, store storage.Store) {
	t.Helper()
	ctx := context.Background()

	counter := testKey{tier: storage.TierInstance, name: "counter"}
	record := testKey{tier: storage.TierPersistent, name: "record:1"}
	sameNameOtherTier := testKey{tier: storage.TierPersistent, name: "counter"}

	t.Run("missing key", func(t *testing.T) {
		_, err := store.Get(ctx, counter)
		assert.True(t, errors.Is(err, storage.ErrNotFound))

		ok, err := store.Has(ctx, counter)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("apply batch", func(t *testing.T) {
		require.NoError(t, store.Apply(ctx, []storage.Write{
			{Key: counter, Value: []byte("1")},
			{Key: record, Value: []byte(`{"id":1}`)},
		}))

		value, err := store.Get(ctx, counter)
		require.NoError(t, err)
		assert.Equal(t, "1", string(value))

		ok, err := store.Has(ctx, record)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Has(ctx, sameNameOtherTier)
		require.NoError(t, err)
		assert.False(t, ok, "tiers must not share a namespace")
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.Apply(ctx, []storage.Write{{Key: counter, Value: []byte("2")}}))

		value, err := store.Get(ctx, counter)
		require.NoError(t, err)
		assert.Equal(t, "2", string(value))
	})

	t.Run("empty batch", func(t *testing.T) {
		require.NoError(t, store.Apply(ctx, nil))
	})

	t.Run("txn overlay", func(t *testing.T) {
		txn := storage.NewTxn(store)
		require.NoError(t, txn.SetJSON(record, map[string]int{"id": 2}))

		got, ok, err := storage.GetJSON[map[string]int](ctx, txn, record)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 2, got["id"])

		// Nothing reaches the store until the writes are applied.
		stored, ok, err := storage.GetJSON[map[string]int](ctx, store, record)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 1, stored["id"])

		require.NoError(t, store.Apply(ctx, txn.Writes()))
		stored, _, err = storage.GetJSON[map[string]int](ctx, store, record)
		require.NoError(t, err)
		assert.Equal(t, 2, stored["id"])
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}
