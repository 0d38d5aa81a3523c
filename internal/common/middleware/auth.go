package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"geev-escrow/internal/account"
	"geev-escrow/internal/common/errors"
)

// RequireAuth rejects requests without an authenticated wallet session.
func RequireAuth(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := account.CallerFromContext(c.Request.Context()); !ok {
			sendErrorResponse(c, errors.NewUnauthorizedError("wallet session required"), logger)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Caller returns the authenticated wallet of the request.
func Caller(c *gin.Context) (account.Address, error) {
	caller, ok := account.CallerFromContext(c.Request.Context())
	if !ok {
		return "", errors.NewUnauthorizedError("wallet session required")
	}
	return caller, nil
}
