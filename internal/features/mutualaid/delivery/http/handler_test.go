package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geev-escrow/internal/account"
	"geev-escrow/internal/common/middleware"
	"geev-escrow/internal/contract/contracttest"
	"geev-escrow/internal/features/mutualaid/models"
	"geev-escrow/internal/features/mutualaid/service"
)

const callerHeader = "X-Test-Caller"

func setup(t *testing.T) (*contracttest.Harness, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := contracttest.New(t)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Errors(zerolog.Nop()))
	router.Use(func(c *gin.Context) {
		if name := c.GetHeader(callerHeader); name != "" {
			c.Request = c.Request.WithContext(account.WithCaller(c.Request.Context(), contracttest.Addr(name)))
		}
		c.Next()
	})
	NewMutualAidHandler(service.NewMutualAidService(h.Host, zerolog.Nop())).
		RegisterRoutes(router.Group("/api/v1"), middleware.RequireAuth(zerolog.Nop()))
	return h, router
}

func do(t *testing.T, router *gin.Engine, method, path, caller string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set(callerHeader, caller)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHelpRequestOverHTTP(t *testing.T) {
	h, router := setup(t)
	h.Mint(t, account.NativeToken, contracttest.Addr("alice"), 1000)

	w := do(t, router, http.MethodPost, "/api/v1/requests", "creator", models.CreateHelpRequestRequest{
		Token: "TON", Goal: "1000", Title: "Rent",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, router, http.MethodPost, "/api/v1/requests/1/donate", "alice", models.DonateRequest{Amount: "300"})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = do(t, router, http.MethodPost, "/api/v1/requests/1/donate", "alice", models.DonateRequest{Amount: "0"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/requests/1/donations/"+contracttest.Addr("alice").String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var donation models.DonationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &donation))
	assert.Equal(t, "300", donation.Amount)

	w = do(t, router, http.MethodPost, "/api/v1/requests/1/withdraw", "creator", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/requests/1/cancel", "alice", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/requests/1/cancel", "creator", nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = do(t, router, http.MethodPost, "/api/v1/requests/1/refund", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var refund models.AmountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refund))
	assert.Equal(t, "300", refund.Amount)
	assert.Equal(t, "1000", h.Balance(t, account.NativeToken, contracttest.Addr("alice")).String())

	w = do(t, router, http.MethodPost, "/api/v1/requests/1/refund", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/requests/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var request models.HelpRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &request))
	assert.Equal(t, models.HelpRequestStatusCancelled, request.Status)
	assert.True(t, request.RaisedAmount.IsZero())
}

func TestHelpRequestRoutesRequireSession(t *testing.T) {
	_, router := setup(t)

	for _, path := range []string{"/api/v1/requests", "/api/v1/requests/1/donate", "/api/v1/requests/1/refund"} {
		w := do(t, router, http.MethodPost, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := do(t, router, http.MethodGet, "/api/v1/requests/5", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
