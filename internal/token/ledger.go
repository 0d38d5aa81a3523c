// Package token keeps fungible balances for every token the contract
// custodies, inside the same store as the contract records.
package token

import (
	"context"

	"geev-escrow/internal/account"
	apperrors "geev-escrow/internal/common/errors"
	"geev-escrow/internal/contract"
	"geev-escrow/internal/money"
	"geev-escrow/internal/storage"
)

// Ledger reads and writes balances through a call transaction.
type Ledger struct {
	tx *storage.Txn
}

func NewLedger(tx *storage.Txn) *Ledger {
	return &Ledger{tx: tx}
}

// Custody is a contract.CustodyFactory backed by Ledger.
func Custody(tx *storage.Txn) contract.Custody {
	return NewLedger(tx)
}

// Transfer moves amount from one account to another. Zero amounts succeed
// without touching storage. A transfer to the sender is rejected: it would
// report a deposit that never changed any balance.
func (l *Ledger) Transfer(ctx context.Context, tok account.Token, from, to account.Address, amount money.Amount) error {
	if from == to {
		return apperrors.New(apperrors.ErrCodeTransferFailed, "sender and recipient are the same account").
			WithDetail("token", tok.String()).
			WithAccount(from.String())
	}
	if amount.IsZero() {
		return nil
	}

	fromBalance, err := BalanceOf(ctx, l.tx, tok, from)
	if err != nil {
		return err
	}
	debited, err := fromBalance.CheckedSub(amount)
	if err != nil {
		return apperrors.New(apperrors.ErrCodeTransferFailed, "insufficient balance").
			WithDetail("token", tok.String()).
			WithDetail("from", from.String()).
			WithDetail("balance", fromBalance.String()).
			WithDetail("amount", amount.String())
	}
	toBalance, err := BalanceOf(ctx, l.tx, tok, to)
	if err != nil {
		return err
	}
	credited, err := toBalance.CheckedAdd(amount)
	if err != nil {
		return err
	}

	if err := l.set(tok, from, debited); err != nil {
		return err
	}
	return l.set(tok, to, credited)
}

// Mint credits amount to an account out of thin air.
func (l *Ledger) Mint(ctx context.Context, tok account.Token, to account.Address, amount money.Amount) (money.Amount, error) {
	balance, err := BalanceOf(ctx, l.tx, tok, to)
	if err != nil {
		return money.Amount{}, err
	}
	credited, err := balance.CheckedAdd(amount)
	if err != nil {
		return money.Amount{}, err
	}
	if err := l.set(tok, to, credited); err != nil {
		return money.Amount{}, err
	}
	return credited, nil
}

func (l *Ledger) set(tok account.Token, acct account.Address, balance money.Amount) error {
	if err := l.tx.SetJSON(contract.BalanceKey{Token: tok, Account: acct}, balance); err != nil {
		return apperrors.NewStorageError("store balance", err)
	}
	return nil
}

// BalanceOf returns the balance of acct, zero when never credited.
func BalanceOf(ctx context.Context, r storage.Reader, tok account.Token, acct account.Address) (money.Amount, error) {
	balance, _, err := storage.GetJSON[money.Amount](ctx, r, contract.BalanceKey{Token: tok, Account: acct})
	if err != nil {
		return money.Amount{}, apperrors.NewStorageError("load balance", err)
	}
	return balance, nil
}
