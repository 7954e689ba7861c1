package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/serchbauti/technical-t1/internal/models"
	"github.com/serchbauti/technical-t1/internal/service"
)

type ChargeHandler struct {
	service *service.ChargeService
	logger  *zap.Logger
}

func NewChargeHandler(service *service.ChargeService, logger *zap.Logger) *ChargeHandler {
	return &ChargeHandler{
		service: service,
		logger:  logger,
	}
}

// CreateCharge handles POST /charges. A fresh charge returns 201; an
// idempotent replay of an earlier request_id returns 200 with the
// original record.
func (h *ChargeHandler) CreateCharge(c *gin.Context) {
	var req models.ChargeCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c)
		return
	}

	result, err := h.service.CreateCharge(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, result.Charge)
}

// ListCharges handles GET /charges/:clientId?status=&since=&until=
func (h *ChargeHandler) ListCharges(c *gin.Context) {
	filter, err := parseChargeFilter(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	charges, err := h.service.ListCharges(c.Request.Context(), c.Param("clientId"), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, charges)
}

// RefundCharge handles POST /charges/:id/refund
func (h *ChargeHandler) RefundCharge(c *gin.Context) {
	charge, err := h.service.RefundCharge(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, charge)
}

func parseChargeFilter(c *gin.Context) (models.ChargeFilter, error) {
	var filter models.ChargeFilter

	if raw := c.Query("status"); raw != "" {
		status := models.ChargeStatus(raw)
		if status != models.ChargeStatusApproved && status != models.ChargeStatusDeclined {
			return filter, models.NewValidationError("status must be approved or declined")
		}
		filter.Status = &status
	}
	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, models.NewValidationError("since must be an RFC3339 timestamp")
		}
		filter.Since = &since
	}
	if raw := c.Query("until"); raw != "" {
		until, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, models.NewValidationError("until must be an RFC3339 timestamp")
		}
		filter.Until = &until
	}
	return filter, nil
}
