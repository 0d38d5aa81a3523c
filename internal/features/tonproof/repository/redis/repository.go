package redis

import (
	"context"
	"fmt"
	"time"

	"geev-escrow/internal/features/tonproof/repository"
	platformredis "geev-escrow/internal/platform/redis"
)

const keyPrefixPayload = "ton_proof:payload"

type Repository struct {
	client *platformredis.Client
}

func NewRepository(client *platformredis.Client) repository.Repository {
	return &Repository{client: client}
}

func (r *Repository) SavePayload(ctx context.Context, payload string, ttl time.Duration) error {
	key := r.client.Key(keyPrefixPayload, payload)
	if err := r.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to save payload: %w", err)
	}
	return nil
}

// ConsumePayload relies on DEL being atomic: of two concurrent verifications
// only one sees the key removed.
func (r *Repository) ConsumePayload(ctx context.Context, payload string) (bool, error) {
	key := r.client.Key(keyPrefixPayload, payload)
	deleted, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to consume payload: %w", err)
	}
	return deleted == 1, nil
}
