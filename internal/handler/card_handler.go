package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/serchbauti/technical-t1/internal/models"
	"github.com/serchbauti/technical-t1/internal/service"
)

type CardHandler struct {
	service *service.CardService
	logger  *zap.Logger
}

func NewCardHandler(service *service.CardService, logger *zap.Logger) *CardHandler {
	return &CardHandler{
		service: service,
		logger:  logger,
	}
}

// CreateCard handles POST /cards. The raw PAN appears only in the
// request body and is never echoed back.
func (h *CardHandler) CreateCard(c *gin.Context) {
	var req models.CardCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c)
		return
	}

	card, err := h.service.CreateCard(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, card)
}

// GetCard handles GET /cards/:id
func (h *CardHandler) GetCard(c *gin.Context) {
	card, err := h.service.GetCard(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, card)
}

// UpdateCard handles PUT /cards/:id (bin/last4 only)
func (h *CardHandler) UpdateCard(c *gin.Context) {
	var req models.CardUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c)
		return
	}

	card, err := h.service.UpdateCard(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, card)
}

// DeleteCard handles DELETE /cards/:id
func (h *CardHandler) DeleteCard(c *gin.Context) {
	if err := h.service.DeleteCard(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
