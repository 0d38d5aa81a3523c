package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geev-escrow/internal/account"
	apperrors "geev-escrow/internal/common/errors"
	"geev-escrow/internal/contract"
	"geev-escrow/internal/contract/contracttest"
	"geev-escrow/internal/events"
	"geev-escrow/internal/features/mutualaid/models"
	"geev-escrow/internal/money"
)

var (
	creator = contracttest.Addr("creator")
	alice   = contracttest.Addr("alice")
	bob     = contracttest.Addr("bob")
	carol   = contracttest.Addr("carol")
)

func setup(t *testing.T) (*contracttest.Harness, MutualAidService) {
	t.Helper()
	h := contracttest.New(t)
	for _, donor := range []account.Address{alice, bob, carol} {
		h.Mint(t, account.NativeToken, donor, 1_000)
	}
	return h, NewMutualAidService(h.Host, zerolog.Nop())
}

func create(t *testing.T, svc MutualAidService, goal uint64) uint64 {
	t.Helper()
	id, err := svc.Create(contracttest.As(creator), &models.HelpRequestCreate{
		Creator: creator,
		Token:   account.NativeToken,
		Goal:    money.FromUint64(goal),
		Title:   "Medical bills",
	})
	require.NoError(t, err)
	return id
}

func donate(t *testing.T, svc MutualAidService, id uint64, donor account.Address, amount uint64) {
	t.Helper()
	require.NoError(t, svc.Donate(contracttest.As(donor), donor, id, money.FromUint64(amount)))
}

func balance(t *testing.T, h *contracttest.Harness, acct account.Address) string {
	t.Helper()
	return h.Balance(t, account.NativeToken, acct).String()
}

func TestCreate(t *testing.T) {
	h, svc := setup(t)

	id := create(t, svc, 1000)
	assert.Equal(t, uint64(1), id)

	request, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.HelpRequestStatusOpen, request.Status)
	assert.Equal(t, "1000", request.Goal.String())
	assert.True(t, request.RaisedAmount.IsZero())
	assert.Equal(t, contracttest.StartTime, request.CreatedAt)
	assert.Equal(t, []string{events.HelpRequestCreated}, h.Sink.Topics())
}

func TestCreateRejections(t *testing.T) {
	_, svc := setup(t)

	_, err := svc.Create(contracttest.As(creator), &models.HelpRequestCreate{
		Creator: creator, Token: account.NativeToken, Goal: money.Zero(), Title: "x",
	})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidAmount))

	_, err = svc.Create(contracttest.As(creator), &models.HelpRequestCreate{
		Creator: creator, Token: account.NativeToken, Goal: money.FromUint64(5), Title: " ",
	})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))

	_, err = svc.Create(contracttest.As(alice), &models.HelpRequestCreate{
		Creator: creator, Token: account.NativeToken, Goal: money.FromUint64(5), Title: "x",
	})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotAuthorized))
}

func TestFundingScenario(t *testing.T) {
	h, svc := setup(t)
	id := create(t, svc, 1000)

	donate(t, svc, id, alice, 300)
	request, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.HelpRequestStatusOpen, request.Status)
	assert.Equal(t, "300", request.RaisedAmount.String())

	donate(t, svc, id, bob, 700)
	request, err = svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.HelpRequestStatusFullyFunded, request.Status)
	assert.Equal(t, "1000", request.RaisedAmount.String())
	assert.Equal(t, uint32(2), request.DonorCount)
	assert.Contains(t, h.Sink.Topics(), events.HelpRequestFunded)

	err = svc.Donate(contracttest.As(carol), carol, id, money.FromUint64(1))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidStatus))
	assert.Equal(t, "1000", balance(t, h, carol))

	assert.Equal(t, "1000", balance(t, h, h.Self))
}

func TestDonationsAccumulate(t *testing.T) {
	_, svc := setup(t)
	id := create(t, svc, 1000)

	donate(t, svc, id, alice, 100)
	donate(t, svc, id, alice, 150)

	got, err := svc.GetDonation(context.Background(), id, alice)
	require.NoError(t, err)
	assert.Equal(t, "250", got.String())

	request, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), request.DonorCount)

	none, err := svc.GetDonation(context.Background(), id, bob)
	require.NoError(t, err)
	assert.True(t, none.IsZero())
}

func TestDonateRejections(t *testing.T) {
	h, svc := setup(t)
	id := create(t, svc, 1000)

	tests := []struct {
		name   string
		ctx    context.Context
		donor  account.Address
		id     uint64
		amount uint64
		code   apperrors.ErrorCode
	}{
		{"zero amount", contracttest.As(alice), alice, id, 0, apperrors.ErrCodeInvalidAmount},
		{"missing request", contracttest.As(alice), alice, 77, 10, apperrors.ErrCodeHelpRequestNotFound},
		{"wrong signer", contracttest.As(bob), alice, id, 10, apperrors.ErrCodeNotAuthorized},
		{"insufficient balance", contracttest.As(alice), alice, id, 1001, apperrors.ErrCodeTransferFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Donate(tt.ctx, tt.donor, tt.id, money.FromUint64(tt.amount))
			assert.Equal(t, tt.code, apperrors.CodeOf(err))
		})
	}

	request, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, request.RaisedAmount.IsZero())
	assert.Equal(t, "1000", balance(t, h, alice))
}

func TestDonateOverflowLeavesStateUntouched(t *testing.T) {
	h, svc := setup(t)
	whale := contracttest.Addr("whale")
	h.MintAmount(t, account.NativeToken, whale, money.Max())

	id, err := svc.Create(contracttest.As(creator), &models.HelpRequestCreate{
		Creator: creator, Token: account.NativeToken, Goal: money.Max(), Title: "Huge",
	})
	require.NoError(t, err)

	almost, err := money.Max().CheckedSub(money.FromUint64(10))
	require.NoError(t, err)
	require.NoError(t, svc.Donate(contracttest.As(whale), whale, id, almost))

	before := h.Snapshot(t,
		contract.HelpRequestKey{ID: id},
		contract.DonationKey{RequestID: id, Donor: bob},
		contract.BalanceKey{Token: account.NativeToken, Account: bob},
		contract.BalanceKey{Token: account.NativeToken, Account: h.Self},
	)

	err = svc.Donate(contracttest.As(bob), bob, id, money.FromUint64(11))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeArithmeticOverflow))

	after := h.Snapshot(t,
		contract.HelpRequestKey{ID: id},
		contract.DonationKey{RequestID: id, Donor: bob},
		contract.BalanceKey{Token: account.NativeToken, Account: bob},
		contract.BalanceKey{Token: account.NativeToken, Account: h.Self},
	)
	assert.Equal(t, before, after)
}

func TestDonateWhilePaused(t *testing.T) {
	h, svc := setup(t)
	id := create(t, svc, 1000)
	require.NoError(t, h.Host.Invoke(context.Background(), "pause", func(env *contract.Env) error {
		return contract.Save(env, contract.PausedKey{}, true)
	}))

	err := svc.Donate(contracttest.As(alice), alice, id, money.FromUint64(10))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodePaused))
}

func TestCancelAndRefundScenario(t *testing.T) {
	h, svc := setup(t)
	id := create(t, svc, 1000)
	donate(t, svc, id, alice, 400)

	err := svc.Cancel(contracttest.As(alice), alice, id)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotCreator))

	_, err = svc.ClaimRefund(contracttest.As(alice), alice, id)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidStatus), "refunds need a cancelled request")

	require.NoError(t, svc.Cancel(contracttest.As(creator), creator, id))

	err = svc.Donate(contracttest.As(bob), bob, id, money.FromUint64(10))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidStatus))

	refunded, err := svc.ClaimRefund(contracttest.As(alice), alice, id)
	require.NoError(t, err)
	assert.Equal(t, "400", refunded.String())
	assert.Equal(t, "1000", balance(t, h, alice))

	donation, err := svc.GetDonation(context.Background(), id, alice)
	require.NoError(t, err)
	assert.True(t, donation.IsZero())

	request, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, request.RaisedAmount.IsZero())

	_, err = svc.ClaimRefund(contracttest.As(alice), alice, id)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidAmount))
	assert.Equal(t, "1000", balance(t, h, alice))

	_, err = svc.ClaimRefund(contracttest.As(bob), bob, id)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidAmount), "never donated")

	err = svc.Cancel(contracttest.As(creator), creator, id)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidStatus))
}

func TestWithdraw(t *testing.T) {
	h, svc := setup(t)
	id := create(t, svc, 500)
	donate(t, svc, id, alice, 200)

	_, err := svc.Withdraw(contracttest.As(creator), creator, id)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidStatus))

	donate(t, svc, id, bob, 400)

	err = svc.Cancel(contracttest.As(creator), creator, id)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidStatus), "funded requests cannot be cancelled")

	_, err = svc.Withdraw(contracttest.As(alice), alice, id)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotCreator))

	amount, err := svc.Withdraw(contracttest.As(creator), creator, id)
	require.NoError(t, err)
	assert.Equal(t, "600", amount.String())
	assert.Equal(t, "600", balance(t, h, creator))
	assert.True(t, h.Balance(t, account.NativeToken, h.Self).IsZero())

	request, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.HelpRequestStatusClosed, request.Status)

	_, err = svc.Withdraw(contracttest.As(creator), creator, id)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidStatus))
}

// Custody always covers the raised amount of open and funded requests.
func TestConservationOfFunds(t *testing.T) {
	h, svc := setup(t)
	open := create(t, svc, 10_000)
	cancelled := create(t, svc, 10_000)
	funded := create(t, svc, 100)

	donate(t, svc, open, alice, 250)
	donate(t, svc, cancelled, bob, 300)
	donate(t, svc, cancelled, carol, 50)
	donate(t, svc, funded, carol, 120)
	require.NoError(t, svc.Cancel(contracttest.As(creator), creator, cancelled))
	_, err := svc.ClaimRefund(contracttest.As(carol), carol, cancelled)
	require.NoError(t, err)

	outstanding := money.Zero()
	for _, id := range []uint64{open, cancelled, funded} {
		request, err := svc.GetByID(context.Background(), id)
		require.NoError(t, err)
		outstanding, err = outstanding.CheckedAdd(request.RaisedAmount)
		require.NoError(t, err)
	}
	assert.Equal(t, "670", outstanding.String())
	assert.Equal(t, outstanding.String(), balance(t, h, h.Self))

	total := money.Zero()
	for _, acct := range []account.Address{alice, bob, carol, creator, h.Self} {
		total, err = total.CheckedAdd(h.Balance(t, account.NativeToken, acct))
		require.NoError(t, err)
	}
	assert.Equal(t, "3000", total.String())
}

func TestGetMissing(t *testing.T) {
	_, svc := setup(t)
	_, err := svc.GetByID(context.Background(), 1)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeHelpRequestNotFound))
}

func TestCustodyAccountCannotDonate(t *testing.T) {
	h, svc := setup(t)
	first := create(t, svc, 10_000)
	second := create(t, svc, 300)
	donate(t, svc, first, alice, 300)

	err := svc.Donate(contracttest.As(h.Self), h.Self, second, money.FromUint64(300))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeTransferFailed))

	request, err := svc.GetByID(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, models.HelpRequestStatusOpen, request.Status)
	assert.True(t, request.RaisedAmount.IsZero())
	donated, err := svc.GetDonation(context.Background(), second, h.Self)
	require.NoError(t, err)
	assert.True(t, donated.IsZero())

	// Alice's donation stays fully refundable.
	require.NoError(t, svc.Cancel(contracttest.As(creator), creator, first))
	refunded, err := svc.ClaimRefund(contracttest.As(alice), alice, first)
	require.NoError(t, err)
	assert.Equal(t, "300", refunded.String())
	assert.Equal(t, "1000", balance(t, h, alice))
	assert.True(t, h.Balance(t, account.NativeToken, h.Self).IsZero())
}

func TestCustodyAccountCannotWithdraw(t *testing.T) {
	h, svc := setup(t)

	id, err := svc.Create(contracttest.As(h.Self), &models.HelpRequestCreate{
		Creator: h.Self, Token: account.NativeToken, Goal: money.FromUint64(100), Title: "x",
	})
	require.NoError(t, err)
	donate(t, svc, id, alice, 100)

	_, err = svc.Withdraw(contracttest.As(h.Self), h.Self, id)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeTransferFailed))
	assert.Equal(t, "100", balance(t, h, h.Self))
}
