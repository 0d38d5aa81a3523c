package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformredis "geev-escrow/internal/platform/redis"
	"geev-escrow/internal/storage"
	"geev-escrow/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := platformredis.New(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), "test:")
	defer client.Close()

	storagetest.Run(t, NewStore(client))

	assert.True(t, mr.Exists("test:kv:instance:counter"))
	assert.True(t, mr.Exists("test:kv:persistent:record:1"))
}

type instanceKey string

func (k instanceKey) Tier() storage.Tier { return storage.TierInstance }
func (k instanceKey) String() string     { return string(k) }

func TestApplyHonoursLockFence(t *testing.T) {
	mr := miniredis.RunT(t)
	client := platformredis.New(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), "test:")
	defer client.Close()
	store := NewStore(client)
	locker := platformredis.NewLocker(client, "host", time.Minute)
	write := []storage.Write{{Key: instanceKey("counter"), Value: []byte("1")}}

	ctx, unlock, err := locker.Lock(context.Background())
	require.NoError(t, err)
	require.NoError(t, store.Apply(ctx, write))
	assert.True(t, mr.Exists("test:kv:instance:counter"))
	unlock()

	tests := []struct {
		name     string
		takeover func()
	}{
		{name: "taken over", takeover: func() { require.NoError(t, mr.Set("test:lock:host", "someone-else")) }},
		{name: "expired", takeover: func() { mr.FastForward(2 * time.Minute) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr.Del("test:lock:host")
			ctx, unlock, err := locker.Lock(context.Background())
			require.NoError(t, err)
			defer unlock()
			tt.takeover()

			stale := []storage.Write{{Key: instanceKey("stale"), Value: []byte("2")}}
			err = store.Apply(ctx, stale)
			assert.True(t, errors.Is(err, platformredis.ErrFenceLost))
			assert.False(t, mr.Exists("test:kv:instance:stale"))
		})
	}
}
