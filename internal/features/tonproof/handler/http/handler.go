package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "geev-escrow/internal/common/errors"
	"geev-escrow/internal/common/middleware"
	"geev-escrow/internal/features/tonproof/models"
)

// Service is the part of the session service the handler calls.
type Service interface {
	GeneratePayload(ctx context.Context) (*models.PayloadResponse, error)
	VerifyProof(ctx context.Context, req *models.TONProofRequest) (*models.SessionResponse, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	tonproof := router.Group("/auth")
	{
		tonproof.POST("/payload", h.GeneratePayload)
		tonproof.POST("/verify", h.VerifyProof)
		tonproof.GET("/session", auth, h.CurrentSession)
	}
}

// @Summary Get ton_proof payload
// @Description Issues a single-use payload for the wallet to sign
// @Tags auth
// @Produce json
// @Success 200 {object} models.PayloadResponse
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /auth/payload [post]
func (h *Handler) GeneratePayload(c *gin.Context) {
	payload, err := h.service.GeneratePayload(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

// @Summary Verify TON Proof
// @Description Exchanges a ton_proof for a wallet session token
// @Tags auth
// @Accept json
// @Produce json
// @Param proof body models.TONProofRequest true "TON Proof data"
// @Success 200 {object} models.SessionResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid request"
// @Failure 401 {object} middleware.ErrorResponse "Proof rejected"
// @Router /auth/verify [post]
func (h *Handler) VerifyProof(c *gin.Context) {
	var req models.TONProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid request body"))
		return
	}

	session, err := h.service.VerifyProof(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// @Summary Current wallet session
// @Tags auth
// @Produce json
// @Security WalletSession
// @Success 200 {object} map[string]string "Session wallet"
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Router /auth/session [get]
func (h *Handler) CurrentSession(c *gin.Context) {
	caller, err := middleware.Caller(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": caller.String()})
}
