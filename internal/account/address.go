// Package account holds the identities and token handles the escrow
// contract moves funds between.
package account

import (
	"context"
	"strings"

	"github.com/xssnick/tonutils-go/address"

	apperrors "geev-escrow/internal/common/errors"
)

// Address is a TON account in bounceable mainnet user-friendly form.
type Address string

// ParseAddress accepts user-friendly (base64url with CRC) and raw
// ("<workchain>:<hex>") forms and returns the normalized address.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperrors.NewValidationError("address", "is required")
	}

	var (
		addr *address.Address
		err  error
	)
	if strings.Contains(s, ":") {
		addr, err = address.ParseRawAddr(s)
	} else {
		addr, err = address.ParseAddr(s)
	}
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid TON address").
			WithDetail("address", s)
	}
	return normalize(addr), nil
}

// FromHash builds an address from a workchain and a 32 byte account hash.
func FromHash(workchain int8, hash []byte) Address {
	return normalize(address.NewAddress(0, byte(workchain), hash))
}

func normalize(addr *address.Address) Address {
	addr.SetBounce(true)
	addr.SetTestnetOnly(false)
	return Address(addr.String())
}

func (a Address) String() string {
	return string(a)
}

func (a Address) IsZero() bool {
	return a == ""
}

type callerKey struct{}

// WithCaller returns a context carrying the authenticated caller.
func WithCaller(ctx context.Context, caller Address) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext returns the authenticated caller, if any.
func CallerFromContext(ctx context.Context) (Address, bool) {
	caller, ok := ctx.Value(callerKey{}).(Address)
	return caller, ok && caller != ""
}
