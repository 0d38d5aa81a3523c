package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"geev-escrow/internal/account"
	apperrors "geev-escrow/internal/common/errors"
)

// Authenticator resolves a session token to its wallet.
type Authenticator interface {
	Authenticate(token string) (account.Address, error)
}

// Session binds the wallet of a valid bearer token to the request context.
// Requests without a token pass through anonymous; a bad token is rejected.
func Session(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			_ = c.Error(apperrors.NewUnauthorizedError("expected a bearer token"))
			c.Abort()
			return
		}

		addr, err := auth.Authenticate(token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(account.WithCaller(c.Request.Context(), addr))
		c.Next()
	}
}
