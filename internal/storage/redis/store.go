// Package redis stores contract records as plain redis strings.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	platformredis "geev-escrow/internal/platform/redis"
	"geev-escrow/internal/storage"
)

type Store struct {
	client *platformredis.Client
}

func NewStore(client *platformredis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) makeKey(key storage.Key) string {
	return s.client.Key("kv", storage.Name(key))
}

func (s *Store) Get(ctx context.Context, key storage.Key) ([]byte, error) {
	data, err := s.client.Get(ctx, s.makeKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Store) Has(ctx context.Context, key storage.Key) (bool, error) {
	n, err := s.client.Exists(ctx, s.makeKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Apply writes the batch inside MULTI/EXEC. When ctx carries a lock fence the
// lock key is WATCHed and the batch commits only while it still holds the
// fence token.
func (s *Store) Apply(ctx context.Context, writes []storage.Write) error {
	if len(writes) == 0 {
		return nil
	}
	write := func(pipe goredis.Pipeliner) error {
		for _, w := range writes {
			pipe.Set(ctx, s.makeKey(w.Key), w.Value, 0)
		}
		return nil
	}

	fence, ok := platformredis.FenceFromContext(ctx)
	if !ok {
		if _, err := s.client.TxPipelined(ctx, write); err != nil {
			return fmt.Errorf("failed to apply %d writes: %w", len(writes), err)
		}
		return nil
	}

	err := s.client.Watch(ctx, func(tx *goredis.Tx) error {
		holder, err := tx.Get(ctx, fence.Key).Result()
		if errors.Is(err, goredis.Nil) || (err == nil && holder != fence.Token) {
			return platformredis.ErrFenceLost
		}
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, write)
		return err
	}, fence.Key)
	if errors.Is(err, goredis.TxFailedErr) {
		err = platformredis.ErrFenceLost
	}
	if err != nil {
		return fmt.Errorf("failed to apply %d writes: %w", len(writes), err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close is a no-op; the client is owned by the caller.
func (s *Store) Close() error {
	return nil
}
