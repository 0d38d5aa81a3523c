package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geev-escrow/internal/account"
	"geev-escrow/internal/common/middleware"
	"geev-escrow/internal/contract/contracttest"
	"geev-escrow/internal/features/custody/service"
)

func TestFaucetAndBalance(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := contracttest.New(t)
	alice := contracttest.Addr("alice")

	router := gin.New()
	router.Use(middleware.Errors(zerolog.Nop()))
	router.Use(func(c *gin.Context) {
		if c.GetHeader("X-Test-Caller") != "" {
			c.Request = c.Request.WithContext(account.WithCaller(c.Request.Context(), alice))
		}
		c.Next()
	})
	NewCustodyHandler(service.NewCustodyService(h.Host, true, zerolog.Nop())).
		RegisterRoutes(router.Group("/api/v1"), middleware.RequireAuth(zerolog.Nop()))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tokens/TON/mint", strings.NewReader(`{"amount":"250"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Caller", "1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tokens/ton/balances/"+alice.String(), nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body BalanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "TON", body.Token)
	assert.Equal(t, "250", body.Balance)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tokens/USD/balances/"+alice.String(), nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
