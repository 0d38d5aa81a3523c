package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"geev-escrow/internal/account"
	apperrors "geev-escrow/internal/common/errors"
	activityservice "geev-escrow/internal/features/activity/service"
)

type ActivityHandler struct {
	service activityservice.ActivityService
}

func NewActivityHandler(service activityservice.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

func (h *ActivityHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/accounts/:address/activity", h.feed)
	router.GET("/leaderboard", h.leaderboard)
}

// @Summary Лента активности кошелька
// @Description События контракта, в которых участвовал кошелек, от новых к старым
// @Tags activity
// @Produce json
// @Param address path string true "Адрес кошелька"
// @Param page query int false "Номер страницы" default(1)
// @Param limit query int false "Размер страницы (до 100)" default(20)
// @Success 200 {object} models.FeedPage
// @Failure 400 {object} middleware.ErrorResponse "Ошибка валидации"
// @Router /accounts/{address}/activity [get]
func (h *ActivityHandler) feed(c *gin.Context) {
	addr, err := account.ParseAddress(c.Param("address"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	page, limit, err := parsePaging(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	feed, err := h.service.Feed(c.Request.Context(), addr, page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

// @Summary Таблица лидеров
// @Description Кошельки по числу созданных кампаний, участий, побед и пожертвований
// @Tags activity
// @Produce json
// @Param page query int false "Номер страницы" default(1)
// @Param limit query int false "Размер страницы (до 100)" default(50)
// @Success 200 {object} models.LeaderboardPage
// @Failure 400 {object} middleware.ErrorResponse "Ошибка валидации"
// @Router /leaderboard [get]
func (h *ActivityHandler) leaderboard(c *gin.Context) {
	page, limit, err := parsePaging(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	board, err := h.service.Leaderboard(c.Request.Context(), page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// parsePaging читает page и limit; пустые значения остаются нулями
func parsePaging(c *gin.Context) (int, int, error) {
	var page, limit int
	var err error
	if raw := c.Query("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil || page < 1 {
			return 0, 0, apperrors.NewValidationError("page", "must be a positive integer")
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 1 {
			return 0, 0, apperrors.NewValidationError("limit", "must be a positive integer")
		}
	}
	return page, limit, nil
}
