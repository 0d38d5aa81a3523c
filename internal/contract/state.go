package contract

import (
	"context"

	"geev-escrow/internal/account"
	apperrors "geev-escrow/internal/common/errors"
	"geev-escrow/internal/storage"
)

// LoadAdmin returns the stored admin; ok is false before initialization.
func LoadAdmin(ctx context.Context, r storage.Reader) (account.Address, bool, error) {
	admin, ok, err := storage.GetJSON[account.Address](ctx, r, AdminKey{})
	if err != nil {
		return "", false, apperrors.NewStorageError("load admin", err)
	}
	return admin, ok, nil
}

// IsPaused treats an uninitialized contract as not paused.
func IsPaused(ctx context.Context, r storage.Reader) (bool, error) {
	paused, _, err := storage.GetJSON[bool](ctx, r, PausedKey{})
	if err != nil {
		return false, apperrors.NewStorageError("load pause flag", err)
	}
	return paused, nil
}

// RequireNotPaused fails with PAUSED while the emergency flag is set.
func (e *Env) RequireNotPaused() error {
	paused, err := IsPaused(e.ctx, e.tx)
	if err != nil {
		return err
	}
	if paused {
		return apperrors.New(apperrors.ErrCodePaused, "contract is paused")
	}
	return nil
}

// NextID allocates the next value of a counter. The first id is 1.
func (e *Env) NextID(counter storage.Key) (uint64, error) {
	current, _, err := storage.GetJSON[uint64](e.ctx, e.tx, counter)
	if err != nil {
		return 0, apperrors.NewStorageError("load counter", err)
	}
	if current == ^uint64(0) {
		return 0, apperrors.NewOverflowError(counter.String())
	}
	next := current + 1
	if err := e.tx.SetJSON(counter, next); err != nil {
		return 0, apperrors.NewStorageError("store counter", err)
	}
	return next, nil
}

// Load decodes the record under key from the call's transaction.
func Load[T any](e *Env, key storage.Key) (T, bool, error) {
	v, ok, err := storage.GetJSON[T](e.ctx, e.tx, key)
	if err != nil {
		return v, false, apperrors.NewStorageError("load "+key.String(), err)
	}
	return v, ok, nil
}

// Save buffers value under key in the call's transaction.
func Save(e *Env, key storage.Key, value any) error {
	if err := e.tx.SetJSON(key, value); err != nil {
		return apperrors.NewStorageError("store "+key.String(), err)
	}
	return nil
}

// View decodes committed state under key.
func View[T any](ctx context.Context, h *Host, key storage.Key) (T, bool, error) {
	v, ok, err := storage.GetJSON[T](ctx, h.store, key)
	if err != nil {
		return v, false, apperrors.NewStorageError("load "+key.String(), err)
	}
	return v, ok, nil
}
