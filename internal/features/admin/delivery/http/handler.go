package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"geev-escrow/internal/account"
	apperrors "geev-escrow/internal/common/errors"
	"geev-escrow/internal/common/middleware"
	"geev-escrow/internal/features/admin/models"
	adminservice "geev-escrow/internal/features/admin/service"
	"geev-escrow/internal/money"
)

type AdminHandler struct {
	service adminservice.AdminService
}

func NewAdminHandler(service adminservice.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	admin := router.Group("/admin")
	{
		admin.GET("/status", h.status)
		admin.POST("/initialize", auth, h.initialize)
		admin.POST("/pause", auth, h.setPaused)
		admin.POST("/withdraw", auth, h.withdraw)
	}
}

// @Summary Состояние контракта
// @Tags admin
// @Produce json
// @Success 200 {object} models.Status
// @Router /admin/status [get]
func (h *AdminHandler) status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// @Summary Инициализировать контракт
// @Description Назначает администратора; вызывается один раз
// @Tags admin
// @Accept json
// @Security WalletSession
// @Param input body models.InitializeRequest true "Администратор"
// @Success 204
// @Failure 409 {object} middleware.ErrorResponse "Уже инициализирован"
// @Router /admin/initialize [post]
func (h *AdminHandler) initialize(c *gin.Context) {
	var input models.InitializeRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid request body"))
		return
	}
	admin, err := account.ParseAddress(input.Admin)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.Initialize(c.Request.Context(), admin); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Поставить контракт на паузу
// @Tags admin
// @Accept json
// @Security WalletSession
// @Param input body models.PauseRequest true "Флаг паузы"
// @Success 204
// @Failure 403 {object} middleware.ErrorResponse "Не администратор"
// @Router /admin/pause [post]
func (h *AdminHandler) setPaused(c *gin.Context) {
	var input models.PauseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid request body"))
		return
	}
	admin, err := middleware.Caller(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.SetPaused(c.Request.Context(), admin, *input.Paused); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Аварийный вывод средств
// @Description Переводит средства со счета контракта без проверки розыгрышей и сборов
// @Tags admin
// @Accept json
// @Security WalletSession
// @Param input body models.WithdrawRequest true "Параметры вывода"
// @Success 204
// @Failure 403 {object} middleware.ErrorResponse "Не администратор"
// @Router /admin/withdraw [post]
func (h *AdminHandler) withdraw(c *gin.Context) {
	var input models.WithdrawRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid request body"))
		return
	}
	tok, err := account.ParseToken(input.Token)
	if err != nil {
		_ = c.Error(err)
		return
	}
	amount, err := money.Parse(input.Amount)
	if err != nil {
		_ = c.Error(err)
		return
	}
	to, err := account.ParseAddress(input.To)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.Withdraw(c.Request.Context(), tok, amount, to); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
