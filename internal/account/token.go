package account

import (
	"strings"
)

// NativeToken is the handle of the chain's native coin.
const NativeToken Token = "TON"

// Token is either NativeToken or the address of a jetton master contract.
type Token string

// ParseToken normalizes a token handle. "ton" in any case maps to NativeToken.
func ParseToken(s string) (Token, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, string(NativeToken)) {
		return NativeToken, nil
	}
	master, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return Token(master), nil
}

func (t Token) String() string {
	return string(t)
}

func (t Token) IsNative() bool {
	return t == NativeToken
}
