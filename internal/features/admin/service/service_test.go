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

var (
	admin   = contracttest.Addr("admin")
	mallory = contracttest.Addr("mallory")
	safe    = contracttest.Addr("safe")
)

func setup(t *testing.T) (*contracttest.Harness, AdminService) {
	t.Helper()
	h := contracttest.New(t)
	return h, NewAdminService(h.Host, zerolog.Nop())
}

func TestInitialize(t *testing.T) {
	h, svc := setup(t)

	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Initialized)
	assert.False(t, status.Paused)

	err = svc.Initialize(contracttest.As(mallory), admin)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotAuthorized))

	require.NoError(t, svc.Initialize(contracttest.As(admin), admin))

	status, err = svc.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Initialized)
	assert.Equal(t, admin.String(), status.Admin)
	assert.False(t, status.Paused)

	err = svc.Initialize(contracttest.As(mallory), mallory)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeAlreadyInitialized))

	assert.Equal(t, []string{events.ContractInitialized}, h.Sink.Topics())
}

func TestSetPaused(t *testing.T) {
	h, svc := setup(t)

	err := svc.SetPaused(contracttest.As(admin), admin, true)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotInitialized))

	require.NoError(t, svc.Initialize(contracttest.As(admin), admin))

	err = svc.SetPaused(contracttest.As(mallory), mallory, true)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotAdmin))

	err = svc.SetPaused(contracttest.As(mallory), admin, true)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotAuthorized))

	require.NoError(t, svc.SetPaused(contracttest.As(admin), admin, true))
	status, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Paused)

	require.NoError(t, svc.SetPaused(contracttest.As(admin), admin, false))
	status, err = svc.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Paused)

	evs := h.Sink.Events()
	require.Len(t, evs, 3)
	assert.Equal(t, "true", evs[1].Fields["paused"])
	assert.Equal(t, "false", evs[2].Fields["paused"])
}

func TestWithdraw(t *testing.T) {
	h, svc := setup(t)
	h.Mint(t, account.NativeToken, h.Self, 1_000)

	err := svc.Withdraw(contracttest.As(admin), account.NativeToken, money.FromUint64(10), safe)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotAdmin), "no admin yet")

	require.NoError(t, svc.Initialize(contracttest.As(admin), admin))

	err = svc.Withdraw(contracttest.As(mallory), account.NativeToken, money.FromUint64(10), mallory)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotAuthorized))

	err = svc.Withdraw(contracttest.As(admin), account.NativeToken, money.Zero(), safe)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidAmount))

	err = svc.Withdraw(contracttest.As(admin), account.NativeToken, money.FromUint64(1_001), safe)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeTransferFailed))

	require.NoError(t, svc.Withdraw(contracttest.As(admin), account.NativeToken, money.FromUint64(400), safe))
	assert.Equal(t, "400", h.Balance(t, account.NativeToken, safe).String())
	assert.Equal(t, "600", h.Balance(t, account.NativeToken, h.Self).String())

	// Paused contracts still allow the emergency exit.
	require.NoError(t, svc.SetPaused(contracttest.As(admin), admin, true))
	require.NoError(t, svc.Withdraw(contracttest.As(admin), account.NativeToken, money.FromUint64(600), safe))
	assert.True(t, h.Balance(t, account.NativeToken, h.Self).IsZero())
}
