package contract

import (
	"context"
	"fmt"
	"runtime/debug"
	"strconv"

	"github.com/rs/zerolog"

	"geev-escrow/internal/account"
	apperrors "geev-escrow/internal/common/errors"
	"geev-escrow/internal/events"
	"geev-escrow/internal/storage"
)

type Options struct {
	Store   storage.Store
	Locker  Locker
	Clock   Clock
	Entropy Entropy
	Auth    Authenticator
	Custody CustodyFactory
	Sink    events.Sink
	// Self is the custody account of the contract.
	Self   account.Address
	Logger zerolog.Logger
}

// Host runs contract calls one at a time. A call either commits every write
// it buffered and then publishes its events, or leaves no trace.
type Host struct {
	store   storage.Store
	locker  Locker
	clock   Clock
	entropy Entropy
	auth    Authenticator
	custody CustodyFactory
	sink    events.Sink
	self    account.Address
	log     zerolog.Logger
}

func NewHost(opts Options) (*Host, error) {
	switch {
	case opts.Store == nil:
		return nil, fmt.Errorf("contract host: store is required")
	case opts.Clock == nil:
		return nil, fmt.Errorf("contract host: clock is required")
	case opts.Entropy == nil:
		return nil, fmt.Errorf("contract host: entropy is required")
	case opts.Custody == nil:
		return nil, fmt.Errorf("contract host: custody is required")
	case opts.Self.IsZero():
		return nil, fmt.Errorf("contract host: contract address is required")
	}
	if opts.Locker == nil {
		opts.Locker = NewLocalLocker()
	}
	if opts.Auth == nil {
		opts.Auth = CallerAuthenticator{}
	}
	if opts.Sink == nil {
		opts.Sink = events.NewLog(opts.Logger)
	}
	return &Host{
		store:   opts.Store,
		locker:  opts.Locker,
		clock:   opts.Clock,
		entropy: opts.Entropy,
		auth:    opts.Auth,
		custody: opts.Custody,
		sink:    opts.Sink,
		self:    opts.Self,
		log:     opts.Logger,
	}, nil
}

// Self returns the contract custody account.
func (h *Host) Self() account.Address {
	return h.self
}

// Reader reads committed state, for views.
func (h *Host) Reader() storage.Reader {
	return h.store
}

// Invoke runs fn as one call named op.
func (h *Host) Invoke(ctx context.Context, op string, fn func(env *Env) error) error {
	ctx, unlock, err := h.locker.Lock(ctx)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to acquire contract lock").
			WithDetail("operation", op)
	}

	tx := storage.NewTxn(h.store)
	env := &Env{
		ctx:     ctx,
		host:    h,
		tx:      tx,
		custody: h.custody(tx),
		now:     h.clock.Now(),
	}

	if err := h.run(env, op, fn); err != nil {
		unlock()
		h.log.Debug().
			Str("operation", op).
			Str("code", string(apperrors.CodeOf(err))).
			Err(err).
			Msg("Call rejected")
		return err
	}

	if err := h.store.Apply(ctx, tx.Writes()); err != nil {
		unlock()
		h.log.Error().Str("operation", op).Err(err).Msg("Failed to commit call")
		return apperrors.NewStorageError("commit "+op, err)
	}
	unlock()

	h.log.Debug().
		Str("operation", op).
		Int("writes", tx.Len()).
		Int("events", len(env.events)).
		Uint64("ledger_time", env.now).
		Msg("Call committed")

	if len(env.events) > 0 {
		if err := h.sink.Publish(ctx, env.events...); err != nil {
			h.log.Warn().Str("operation", op).Err(err).Msg("Failed to publish events")
		}
	}
	return nil
}

func (h *Host) run(env *Env, op string, fn func(env *Env) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().
				Str("operation", op).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Call panicked")
			err = apperrors.New(apperrors.ErrCodeInternal, "contract call panicked").
				WithDetail("operation", op)
		}
	}()
	return fn(env)
}

// Env is the view of the world a single call runs against.
type Env struct {
	ctx     context.Context
	host    *Host
	tx      *storage.Txn
	custody Custody
	now     uint64
	events  []events.Event
}

func (e *Env) Context() context.Context {
	return e.ctx
}

// Store is the call's transaction.
func (e *Env) Store() *storage.Txn {
	return e.tx
}

// Now is sampled once per call.
func (e *Env) Now() uint64 {
	return e.now
}

func (e *Env) Self() account.Address {
	return e.host.self
}

func (e *Env) RequireAuth(acct account.Address) error {
	return e.host.auth.RequireAuth(e.ctx, acct)
}

func (e *Env) RandomU64() (uint64, error) {
	v, err := e.host.entropy.RandomU64()
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeInternal, "entropy source failed")
	}
	return v, nil
}

func (e *Env) Custody() Custody {
	return e.custody
}

// Emit buffers an event; it is published only if the call commits.
func (e *Env) Emit(topic string, fields map[string]string) {
	e.events = append(e.events, events.Event{
		Topic:      topic,
		LedgerTime: e.now,
		Fields:     fields,
	})
}

// FormatID renders ids in event fields.
func FormatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
