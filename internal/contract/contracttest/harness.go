// Package contracttest wires a contract host over in-memory collaborators
// for service tests.
package contracttest

import (
	"context"
	"crypto/sha256"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"geev-escrow/internal/account"
	"geev-escrow/internal/contract"
	"geev-escrow/internal/events"
	"geev-escrow/internal/money"
	"geev-escrow/internal/platform/ledger"
	"geev-escrow/internal/storage"
	"geev-escrow/internal/storage/memory"
	"geev-escrow/internal/token"
	"geev-escrow/internal/utils/random"
)

// StartTime is the ledger time a fresh harness starts at.
const StartTime uint64 = 1_700_000_000

type Harness struct {
	Host    *contract.Host
	Store   *memory.Store
	Clock   *ledger.ManualClock
	Sink    *events.Memory
	Entropy *Entropy
	Self    account.Address
}

func New(t *testing.T) *Harness {
	t.Helper()

	h := &Harness{
		Store:   memory.NewStore(),
		Clock:   ledger.NewManualClock(StartTime),
		Sink:    events.NewMemory(),
		Entropy: &Entropy{inner: random.NewSeeded(1)},
		Self:    Addr("escrow-contract"),
	}
	host, err := contract.NewHost(contract.Options{
		Store:   h.Store,
		Clock:   h.Clock,
		Entropy: h.Entropy,
		Custody: token.Custody,
		Sink:    h.Sink,
		Self:    h.Self,
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	h.Host = host
	return h
}

// Addr derives a stable address from a name.
func Addr(name string) account.Address {
	sum := sha256.Sum256([]byte(name))
	return account.FromHash(0, sum[:])
}

// As returns a context authenticated as acct.
func As(acct account.Address) context.Context {
	return account.WithCaller(context.Background(), acct)
}

// Mint credits acct outside of any contract operation.
func (h *Harness) Mint(t *testing.T, tok account.Token, acct account.Address, amount uint64) {
	t.Helper()
	h.MintAmount(t, tok, acct, money.FromUint64(amount))
}

func (h *Harness) MintAmount(t *testing.T, tok account.Token, acct account.Address, amount money.Amount) {
	t.Helper()
	err := h.Host.Invoke(context.Background(), "mint", func(env *contract.Env) error {
		_, err := token.NewLedger(env.Store()).Mint(env.Context(), tok, acct, amount)
		return err
	})
	require.NoError(t, err)
}

func (h *Harness) Balance(t *testing.T, tok account.Token, acct account.Address) money.Amount {
	t.Helper()
	balance, err := token.BalanceOf(context.Background(), h.Store, tok, acct)
	require.NoError(t, err)
	return balance
}

// Snapshot copies every committed write for later comparison.
func (h *Harness) Snapshot(t *testing.T, keys ...storage.Key) map[string]string {
	t.Helper()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v, err := h.Store.Get(context.Background(), k)
		if err != nil {
			out[storage.Name(k)] = "<missing>"
			continue
		}
		out[storage.Name(k)] = string(v)
	}
	return out
}

// Entropy lets tests swap the source between calls.
type Entropy struct {
	mu    sync.Mutex
	inner contract.Entropy
}

func (e *Entropy) Set(inner contract.Entropy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inner = inner
}

func (e *Entropy) RandomU64() (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inner.RandomU64()
}
