package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"geev-escrow/internal/account"
	"geev-escrow/internal/common/middleware"
	"geev-escrow/internal/features/giveaway/models"
	giveawayservice "geev-escrow/internal/features/giveaway/service"
	"geev-escrow/internal/money"
)

type GiveawayHandler struct {
	service giveawayservice.GiveawayService
}

func NewGiveawayHandler(service giveawayservice.GiveawayService) *GiveawayHandler {
	return &GiveawayHandler{service: service}
}

// RegisterRoutes mounts the giveaway routes; auth guards the calls that act
// for the session wallet.
func (h *GiveawayHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	giveaways := router.Group("/giveaways")
	{
		giveaways.POST("", auth, h.create)
		giveaways.GET("/:id", h.getByID)
		giveaways.POST("/:id/enter", auth, h.enter)
		giveaways.GET("/:id/entries/:address", h.hasEntered)
		giveaways.GET("/:id/participants/:index", h.getParticipant)
		giveaways.POST("/:id/pick-winner", h.pickWinner)
		giveaways.POST("/:id/choose-winner", auth, h.chooseWinner)
		giveaways.POST("/:id/distribute", h.distribute)
		giveaways.POST("/:id/claim", auth, h.claim)
		giveaways.POST("/:id/cancel", auth, h.cancel)
	}

	router.GET("/entries/:id", h.getEntry)
}

// @Summary Создать розыгрыш
// @Description Переводит приз с кошелька сессии на счет контракта и открывает розыгрыш
// @Tags giveaways
// @Accept json
// @Produce json
// @Security WalletSession
// @Param input body models.CreateGiveawayRequest true "Параметры розыгрыша"
// @Success 201 {object} models.CreatedResponse
// @Failure 400 {object} middleware.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} middleware.ErrorResponse "Не авторизован"
// @Failure 422 {object} middleware.ErrorResponse "Недостаточно средств"
// @Failure 503 {object} middleware.ErrorResponse "Контракт на паузе"
// @Router /giveaways [post]
func (h *GiveawayHandler) create(c *gin.Context) {
	var input models.CreateGiveawayRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(validationError(err))
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
	amount, err := money.Parse(input.Amount)
	if err != nil {
		_ = c.Error(err)
		return
	}

	id, err := h.service.Create(c.Request.Context(), &models.GiveawayCreate{
		Creator:         creator,
		Token:           tok,
		Amount:          amount,
		Title:           input.Title,
		Description:     input.Description,
		Category:        input.Category,
		SelectionMethod: models.SelectionMethod(input.SelectionMethod),
		WinnerCount:     input.WinnerCount,
		Duration:        input.Duration,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, models.CreatedResponse{ID: id})
}

// @Summary Получить розыгрыш
// @Tags giveaways
// @Produce json
// @Param id path int true "ID розыгрыша"
// @Success 200 {object} models.Giveaway
// @Failure 404 {object} middleware.ErrorResponse "Розыгрыш не найден"
// @Router /giveaways/{id} [get]
func (h *GiveawayHandler) getByID(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	giveaway, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, giveaway)
}

// @Summary Участвовать в розыгрыше
// @Description Регистрирует кошелек сессии; повторное участие запрещено
// @Tags giveaways
// @Accept json
// @Produce json
// @Security WalletSession
// @Param id path int true "ID розыгрыша"
// @Param input body models.EnterGiveawayRequest false "Содержимое заявки"
// @Success 201 {object} models.CreatedResponse
// @Failure 409 {object} middleware.ErrorResponse "Уже участвует"
// @Failure 410 {object} middleware.ErrorResponse "Розыгрыш завершен"
// @Router /giveaways/{id}/enter [post]
func (h *GiveawayHandler) enter(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var input models.EnterGiveawayRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(validationError(err))
			return
		}
	}

	participant, err := middleware.Caller(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	entryID, err := h.service.Enter(c.Request.Context(), participant, id, input.Content)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, models.CreatedResponse{ID: entryID})
}

// @Summary Проверить участие
// @Tags giveaways
// @Produce json
// @Param id path int true "ID розыгрыша"
// @Param address path string true "Адрес кошелька"
// @Success 200 {object} models.HasEnteredResponse
// @Router /giveaways/{id}/entries/{address} [get]
func (h *GiveawayHandler) hasEntered(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	participant, err := parseAddress(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	entryID, entered, err := h.service.HasEntered(c.Request.Context(), id, participant)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.HasEnteredResponse{Entered: entered, EntryID: entryID})
}

// @Summary Участник по индексу
// @Tags giveaways
// @Produce json
// @Param id path int true "ID розыгрыша"
// @Param index path int true "Индекс участника"
// @Success 200 {object} models.ParticipantResponse
// @Failure 400 {object} middleware.ErrorResponse "Индекс вне диапазона"
// @Router /giveaways/{id}/participants/{index} [get]
func (h *GiveawayHandler) getParticipant(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	index, err := parseIndex(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	participant, err := h.service.GetParticipantAtIndex(c.Request.Context(), id, index)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.ParticipantResponse{
		GiveawayID:  id,
		Index:       index,
		Participant: participant.String(),
	})
}

// @Summary Выбрать победителя
// @Description Доступно любому после окончания розыгрыша
// @Tags giveaways
// @Produce json
// @Param id path int true "ID розыгрыша"
// @Success 200 {object} models.WinnerResponse
// @Failure 409 {object} middleware.ErrorResponse "Розыгрыш еще активен или без участников"
// @Router /giveaways/{id}/pick-winner [post]
func (h *GiveawayHandler) pickWinner(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	winner, err := h.service.PickWinner(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.WinnerResponse{GiveawayID: id, Winner: winner.String()})
}

// @Summary Назначить победителя вручную
// @Tags giveaways
// @Accept json
// @Produce json
// @Security WalletSession
// @Param id path int true "ID розыгрыша"
// @Param input body models.ChooseWinnerRequest true "Индекс победителя"
// @Success 200 {object} models.WinnerResponse
// @Failure 403 {object} middleware.ErrorResponse "Не создатель"
// @Router /giveaways/{id}/choose-winner [post]
func (h *GiveawayHandler) chooseWinner(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var input models.ChooseWinnerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(validationError(err))
		return
	}

	creator, err := middleware.Caller(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	winner, err := h.service.ChooseWinner(c.Request.Context(), creator, id, *input.Index)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.WinnerResponse{GiveawayID: id, Winner: winner.String()})
}

// @Summary Выплатить приз
// @Description Переводит приз победителю; доступно любому
// @Tags giveaways
// @Param id path int true "ID розыгрыша"
// @Success 204
// @Failure 409 {object} middleware.ErrorResponse "Победитель не выбран или приз уже выплачен"
// @Router /giveaways/{id}/distribute [post]
func (h *GiveawayHandler) distribute(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.DistributePrize(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Забрать приз
// @Tags giveaways
// @Security WalletSession
// @Param id path int true "ID розыгрыша"
// @Success 204
// @Failure 403 {object} middleware.ErrorResponse "Кошелек не победитель"
// @Router /giveaways/{id}/claim [post]
func (h *GiveawayHandler) claim(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	claimer, err := middleware.Caller(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.ClaimPrize(c.Request.Context(), id, claimer); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Отменить розыгрыш
// @Description Возвращает приз создателю, пока нет участников
// @Tags giveaways
// @Security WalletSession
// @Param id path int true "ID розыгрыша"
// @Success 204
// @Failure 409 {object} middleware.ErrorResponse "Есть участники"
// @Router /giveaways/{id}/cancel [post]
func (h *GiveawayHandler) cancel(c *gin.Context) {
	id, err := parseID(c, "id")
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

// @Summary Получить заявку
// @Tags giveaways
// @Produce json
// @Param id path int true "ID заявки"
// @Success 200 {object} models.Entry
// @Failure 404 {object} middleware.ErrorResponse "Заявка не найдена"
// @Router /entries/{id} [get]
func (h *GiveawayHandler) getEntry(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	entry, err := h.service.GetEntry(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, entry)
}
