package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"geev-escrow/internal/account"
	apperrors "geev-escrow/internal/common/errors"
	"geev-escrow/internal/common/middleware"
	"geev-escrow/internal/features/mutualaid/models"
	mutualaidservice "geev-escrow/internal/features/mutualaid/service"
	"geev-escrow/internal/money"
)

type MutualAidHandler struct {
	service mutualaidservice.MutualAidService
}

func NewMutualAidHandler(service mutualaidservice.MutualAidService) *MutualAidHandler {
	return &MutualAidHandler{service: service}
}

func (h *MutualAidHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	requests := router.Group("/requests")
	{
		requests.POST("", auth, h.create)
		requests.GET("/:id", h.getByID)
		requests.POST("/:id/donate", auth, h.donate)
		requests.POST("/:id/cancel", auth, h.cancel)
		requests.POST("/:id/refund", auth, h.refund)
		requests.POST("/:id/withdraw", auth, h.withdraw)
		requests.GET("/:id/donations/:address", h.getDonation)
	}
}

// @Summary Создать запрос помощи
// @Tags requests
// @Accept json
// @Produce json
// @Security WalletSession
// @Param input body models.CreateHelpRequestRequest true "Параметры запроса"
// @Success 201 {object} models.CreatedResponse
// @Failure 400 {object} middleware.ErrorResponse "Ошибка валидации"
// @Failure 503 {object} middleware.ErrorResponse "Контракт на паузе"
// @Router /requests [post]
func (h *MutualAidHandler) create(c *gin.Context) {
	var input models.CreateHelpRequestRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid request body"))
		return
	}

	creator, err := middleware.Caller(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	tok, err := account.ParseToken(input.Token)
	if err != nil {
		_ = c.Error(err)
		return
	}
	goal, err := money.Parse(input.Goal)
	if err != nil {
		_ = c.Error(err)
		return
	}

	id, err := h.service.Create(c.Request.Context(), &models.HelpRequestCreate{
		Creator:     creator,
		Token:       tok,
		Goal:        goal,
		Title:       input.Title,
		Description: input.Description,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, models.CreatedResponse{ID: id})
}

// @Summary Получить запрос помощи
// @Tags requests
// @Produce json
// @Param id path int true "ID запроса"
// @Success 200 {object} models.HelpRequest
// @Failure 404 {object} middleware.ErrorResponse "Запрос не найден"
// @Router /requests/{id} [get]
func (h *MutualAidHandler) getByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	request, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, request)
}

// @Summary Пожертвовать
// @Tags requests
// @Accept json
// @Security WalletSession
// @Param id path int true "ID запроса"
// @Param input body models.DonateRequest true "Сумма"
// @Success 204
// @Failure 409 {object} middleware.ErrorResponse "Запрос закрыт для пожертвований"
// @Failure 422 {object} middleware.ErrorResponse "Недостаточно средств или переполнение"
// @Router /requests/{id}/donate [post]
func (h *MutualAidHandler) donate(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var input models.DonateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid request body"))
		return
	}
	amount, err := money.Parse(input.Amount)
	if err != nil {
		_ = c.Error(err)
		return
	}
	donor, err := middleware.Caller(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.Donate(c.Request.Context(), donor, id, amount); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Отменить запрос помощи
// @Tags requests
// @Security WalletSession
// @Param id path int true "ID запроса"
// @Success 204
// @Failure 403 {object} middleware.ErrorResponse "Не создатель"
// @Router /requests/{id}/cancel [post]
func (h *MutualAidHandler) cancel(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	creator, err := middleware.Caller(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.Cancel(c.Request.Context(), creator, id); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Вернуть пожертвование
// @Tags requests
// @Produce json
// @Security WalletSession
// @Param id path int true "ID запроса"
// @Success 200 {object} models.AmountResponse
// @Failure 400 {object} middleware.ErrorResponse "Нечего возвращать"
// @Router /requests/{id}/refund [post]
func (h *MutualAidHandler) refund(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	donor, err := middleware.Caller(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	amount, err := h.service.ClaimRefund(c.Request.Context(), donor, id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.AmountResponse{RequestID: id, Amount: amount.String()})
}

// @Summary Вывести собранные средства
// @Tags requests
// @Produce json
// @Security WalletSession
// @Param id path int true "ID запроса"
// @Success 200 {object} models.AmountResponse
// @Failure 409 {object} middleware.ErrorResponse "Цель не достигнута"
// @Router /requests/{id}/withdraw [post]
func (h *MutualAidHandler) withdraw(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	creator, err := middleware.Caller(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	amount, err := h.service.Withdraw(c.Request.Context(), creator, id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.AmountResponse{RequestID: id, Amount: amount.String()})
}

// @Summary Сумма пожертвований донора
// @Tags requests
// @Produce json
// @Param id path int true "ID запроса"
// @Param address path string true "Адрес донора"
// @Success 200 {object} models.DonationResponse
// @Router /requests/{id}/donations/{address} [get]
func (h *MutualAidHandler) getDonation(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	donor, err := account.ParseAddress(c.Param("address"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	amount, err := h.service.GetDonation(c.Request.Context(), id, donor)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.DonationResponse{RequestID: id, Donor: donor.String(), Amount: amount.String()})
}

func parseID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}
