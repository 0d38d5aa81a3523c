// Package contract hosts the escrow state machines: it serializes calls,
// binds the collaborators each call needs and commits or discards the
// call's effects as one unit.
package contract

import (
	"context"

	"geev-escrow/internal/account"
	apperrors "geev-escrow/internal/common/errors"
	"geev-escrow/internal/money"
	"geev-escrow/internal/storage"
)

// Authenticator fails with NOT_AUTHORIZED unless the invocation was
// authorized by acct.
type Authenticator interface {
	RequireAuth(ctx context.Context, acct account.Address) error
}

// Custody moves balances between accounts. Transfers are all or nothing.
type Custody interface {
	Transfer(ctx context.Context, tok account.Token, from, to account.Address, amount money.Amount) error
}

// CustodyFactory binds a Custody to the call's transaction so that fund
// movement commits together with the bookkeeping.
type CustodyFactory func(tx *storage.Txn) Custody

// Clock returns ledger time in unix seconds, non-decreasing.
type Clock interface {
	Now() uint64
}

// Entropy returns uniformly distributed values that callers cannot predict
// before the call executes.
type Entropy interface {
	RandomU64() (uint64, error)
}

// Locker serializes calls. The returned context is used for the call body
// and its commit, so a distributed lock can attach a fencing token that the
// store checks before writing.
type Locker interface {
	Lock(ctx context.Context) (locked context.Context, unlock func(), err error)
}

// CallerAuthenticator authorizes the caller stored in the request context.
type CallerAuthenticator struct{}

func (CallerAuthenticator) RequireAuth(ctx context.Context, acct account.Address) error {
	caller, ok := account.CallerFromContext(ctx)
	if !ok {
		return apperrors.New(apperrors.ErrCodeNotAuthorized, "no authenticated caller").
			WithDetail("required", acct.String())
	}
	if caller != acct {
		return apperrors.New(apperrors.ErrCodeNotAuthorized, "caller is not authorized to act for this account").
			WithAccount(caller.String()).
			WithDetail("required", acct.String())
	}
	return nil
}

// LocalLocker serializes calls within one process.
type LocalLocker struct {
	sem chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{sem: make(chan struct{}, 1)}
}

func (l *LocalLocker) Lock(ctx context.Context) (context.Context, func(), error) {
	select {
	case l.sem <- struct{}{}:
		return ctx, func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}
