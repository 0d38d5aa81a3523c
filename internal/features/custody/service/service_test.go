package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geev-escrow/internal/account"
	apperrors "geev-escrow/internal/common/errors"
	"geev-escrow/internal/contract/contracttest"
	"geev-escrow/internal/events"
	"geev-escrow/internal/money"
)

func TestMintAndBalance(t *testing.T) {
	h := contracttest.New(t)
	svc := NewCustodyService(h.Host, true, zerolog.Nop())
	alice := contracttest.Addr("alice")

	balance, err := svc.Mint(contracttest.As(alice), account.NativeToken, alice, money.FromUint64(70))
	require.NoError(t, err)
	assert.Equal(t, "70", balance.String())

	balance, err = svc.Mint(contracttest.As(alice), account.NativeToken, alice, money.FromUint64(30))
	require.NoError(t, err)
	assert.Equal(t, "100", balance.String())

	got, err := svc.Balance(context.Background(), account.NativeToken, alice)
	require.NoError(t, err)
	assert.Equal(t, "100", got.String())

	jetton := account.Token(contracttest.Addr("jetton"))
	got, err = svc.Balance(context.Background(), jetton, alice)
	require.NoError(t, err)
	assert.True(t, got.IsZero(), "balances are per token")

	_, err = svc.Mint(contracttest.As(alice), account.NativeToken, contracttest.Addr("bob"), money.FromUint64(1))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotAuthorized))

	_, err = svc.Mint(contracttest.As(alice), account.NativeToken, alice, money.Zero())
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidAmount))

	assert.Equal(t, []string{events.TokensMinted, events.TokensMinted}, h.Sink.Topics())
}

func TestMintDisabled(t *testing.T) {
	h := contracttest.New(t)
	svc := NewCustodyService(h.Host, false, zerolog.Nop())
	alice := contracttest.Addr("alice")

	_, err := svc.Mint(contracttest.As(alice), account.NativeToken, alice, money.FromUint64(1))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}
