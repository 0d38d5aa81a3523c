package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockTimeout = errors.New("failed to acquire lock: timeout")
	// ErrFenceLost means the lock expired or was taken over before the commit.
	ErrFenceLost = errors.New("lock lost before commit")
)

// Fence identifies one lock acquisition. Writers guarded by the lock compare
// Token against the current value of Key inside their transaction.
type Fence struct {
	Key   string
	Token string
}

type fenceKey struct{}

func WithFence(ctx context.Context, f Fence) context.Context {
	return context.WithValue(ctx, fenceKey{}, f)
}

func FenceFromContext(ctx context.Context) (Fence, bool) {
	f, ok := ctx.Value(fenceKey{}).(Fence)
	return f, ok
}

// releaseScript deletes the lock only while it still holds our token, so an
// expired holder cannot release a lock taken over by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a single-key mutual exclusion lock shared by every instance
// that talks to the same redis.
type Locker struct {
	client *Client
	key    string
	ttl    time.Duration
	retry  time.Duration
}

func NewLocker(client *Client, name string, ttl time.Duration) *Locker {
	return &Locker{
		client: client,
		key:    client.Key("lock", name),
		ttl:    ttl,
		retry:  20 * time.Millisecond,
	}
}

// Lock blocks until the lock is held or ctx is done. The returned context
// carries the Fence of this acquisition.
func (l *Locker) Lock(ctx context.Context) (context.Context, func(), error) {
	token := uuid.New().String()
	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to acquire lock: %w", err)
		}
		if ok {
			unlock := func() {
				// The call context may already be cancelled; release regardless.
				_ = releaseScript.Run(context.Background(), l.client, []string{l.key}, token).Err()
			}
			return WithFence(ctx, Fence{Key: l.key, Token: token}), unlock, nil
		}

		select {
		case <-ctx.Done():
			return nil, nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
		case <-time.After(l.retry):
		}
	}
}
