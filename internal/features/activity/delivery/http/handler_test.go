package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	go_redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geev-escrow/internal/common/middleware"
	"geev-escrow/internal/contract/contracttest"
	"geev-escrow/internal/events"
	"geev-escrow/internal/features/activity/models"
	activityredis "geev-escrow/internal/features/activity/repository/redis"
	"geev-escrow/internal/features/activity/service"
	"geev-escrow/internal/platform/redis"
)

func setup(t *testing.T) (service.ActivityService, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.New(go_redis.NewClient(&go_redis.Options{Addr: mr.Addr()}), "test:")
	t.Cleanup(func() { _ = client.Close() })

	svc := service.NewActivityService(activityredis.NewActivityRepository(client), zerolog.Nop())
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Errors(zerolog.Nop()))
	NewActivityHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return svc, router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestActivityOverHTTP(t *testing.T) {
	svc, router := setup(t)
	alice := contracttest.Addr("alice")

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.HandleEvent(context.Background(), events.Event{
			Topic:      events.GiveawayEntered,
			LedgerTime: uint64(i + 1),
			Fields:     map[string]string{"participant": alice.String()},
		}))
	}

	w := get(router, "/api/v1/accounts/"+alice.String()+"/activity?page=2&limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	var feed models.FeedPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	assert.Equal(t, int64(3), feed.Total)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, uint64(1), feed.Items[0].LedgerTime)

	w = get(router, "/api/v1/leaderboard")
	require.Equal(t, http.StatusOK, w.Code)
	var board models.LeaderboardPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Len(t, board.Entries, 1)
	assert.Equal(t, alice.String(), board.Entries[0].Account)
	assert.Equal(t, float64(3), board.Entries[0].Score)
}

func TestActivityRejectsBadInput(t *testing.T) {
	_, router := setup(t)
	alice := contracttest.Addr("alice")

	tests := []struct {
		name string
		path string
	}{
		{name: "bad address", path: "/api/v1/accounts/garbage/activity"},
		{name: "bad page", path: "/api/v1/accounts/" + alice.String() + "/activity?page=0"},
		{name: "bad limit", path: "/api/v1/leaderboard?limit=abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(router, tt.path)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
		})
	}
}
