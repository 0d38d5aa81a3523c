package repository

import (
	"context"
	"time"
)

// Repository хранит одноразовые payload для ton_proof
type Repository interface {
	// SavePayload сохраняет payload на ttl
	SavePayload(ctx context.Context, payload string, ttl time.Duration) error

	// ConsumePayload удаляет payload и сообщает, существовал ли он
	ConsumePayload(ctx context.Context, payload string) (bool, error)
}
