package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"geev-escrow/internal/account"
	apperrors "geev-escrow/internal/common/errors"
	"geev-escrow/internal/common/middleware"
	custodyservice "geev-escrow/internal/features/custody/service"
	"geev-escrow/internal/money"
)

// BalanceResponse is a custody ledger balance
type BalanceResponse struct {
	Token   string `json:"token" example:"TON"`
	Account string `json:"account"`
	Balance string `json:"balance" example:"1000"`
}

// MintRequest is the body of POST /tokens/{token}/mint
type MintRequest struct {
	Amount string `json:"amount" binding:"required" example:"1000"`
}

type CustodyHandler struct {
	service custodyservice.CustodyService
}

func NewCustodyHandler(service custodyservice.CustodyService) *CustodyHandler {
	return &CustodyHandler{service: service}
}

func (h *CustodyHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	tokens := router.Group("/tokens/:token")
	{
		tokens.GET("/balances/:address", h.balance)
		tokens.POST("/mint", auth, h.mint)
	}
}

// @Summary Баланс на счете хранения
// @Tags tokens
// @Produce json
// @Param token path string true "TON или адрес мастера жетона"
// @Param address path string true "Адрес кошелька"
// @Success 200 {object} BalanceResponse
// @Router /tokens/{token}/balances/{address} [get]
func (h *CustodyHandler) balance(c *gin.Context) {
	tok, err := account.ParseToken(c.Param("token"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	acct, err := account.ParseAddress(c.Param("address"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	balance, err := h.service.Balance(c.Request.Context(), tok, acct)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{Token: tok.String(), Account: acct.String(), Balance: balance.String()})
}

// @Summary Тестовый кран
// @Description Начисляет тестовые средства кошельку сессии; доступно только при FAUCET_ENABLED
// @Tags tokens
// @Accept json
// @Produce json
// @Security WalletSession
// @Param token path string true "TON или адрес мастера жетона"
// @Param input body MintRequest true "Сумма"
// @Success 200 {object} BalanceResponse
// @Failure 404 {object} middleware.ErrorResponse "Кран выключен"
// @Router /tokens/{token}/mint [post]
func (h *CustodyHandler) mint(c *gin.Context) {
	tok, err := account.ParseToken(c.Param("token"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	var input MintRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid request body"))
		return
	}
	amount, err := money.Parse(input.Amount)
	if err != nil {
		_ = c.Error(err)
		return
	}
	to, err := middleware.Caller(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	balance, err := h.service.Mint(c.Request.Context(), tok, to, amount)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{Token: tok.String(), Account: to.String(), Balance: balance.String()})
}
