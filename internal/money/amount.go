// Package money implements token amounts with checked arithmetic.
//
// An Amount is a non-negative integer bounded by the positive range of a
// signed 128-bit integer, the unit the custody layer accounts in.
package money

import (
	"encoding/json"
	"strings"

	"github.com/holiman/uint256"

	apperrors "geev-escrow/internal/common/errors"
)

// maxAmount is 2^127 - 1.
var maxAmount = func() uint256.Int {
	var m uint256.Int
	m.Lsh(uint256.NewInt(1), 127)
	m.SubUint64(&m, 1)
	return m
}()

// Amount is an immutable value; the zero value is zero.
type Amount struct {
	v uint256.Int
}

func Zero() Amount {
	return Amount{}
}

// Max returns the largest representable amount.
func Max() Amount {
	return Amount{v: maxAmount}
}

func FromUint64(n uint64) Amount {
	var a Amount
	a.v.SetUint64(n)
	return a
}

// Parse reads a decimal string. Signs, non-digits and values above Max are
// rejected with INVALID_AMOUNT.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, apperrors.New(apperrors.ErrCodeInvalidAmount, "amount is empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return Amount{}, apperrors.Newf(apperrors.ErrCodeInvalidAmount, "amount %q is not a non-negative integer", s)
		}
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Amount{}, apperrors.Wrapf(err, apperrors.ErrCodeInvalidAmount, "amount %q out of range", s)
	}
	if v.Gt(&maxAmount) {
		return Amount{}, apperrors.Newf(apperrors.ErrCodeInvalidAmount, "amount %q exceeds maximum", s)
	}
	return Amount{v: *v}, nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Cmp returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

func (a Amount) Equal(b Amount) bool {
	return a.v.Eq(&b.v)
}

func (a Amount) String() string {
	return a.v.Dec()
}

// CheckedAdd returns a+b or ARITHMETIC_OVERFLOW when the sum leaves the range.
func (a Amount) CheckedAdd(b Amount) (Amount, error) {
	var sum uint256.Int
	if _, overflow := sum.AddOverflow(&a.v, &b.v); overflow || sum.Gt(&maxAmount) {
		return Amount{}, apperrors.NewOverflowError("amount addition")
	}
	return Amount{v: sum}, nil
}

// CheckedSub returns a-b or ARITHMETIC_OVERFLOW when b > a.
func (a Amount) CheckedSub(b Amount) (Amount, error) {
	var diff uint256.Int
	if _, underflow := diff.SubOverflow(&a.v, &b.v); underflow {
		return Amount{}, apperrors.NewOverflowError("amount subtraction")
	}
	return Amount{v: diff}, nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a decimal string or a bare JSON integer.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
