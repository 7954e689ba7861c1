package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/serchbauti/technical-t1/internal/models"
)

// respondError maps a domain error to its HTTP status and a stable
// machine-readable body. Unknown errors become 500 without leaking
// internals.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	appErr, ok := models.AsAppError(err)
	if !ok {
		logger.Error("unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  models.ErrorCodeStorageError,
			"error": "Internal server error",
		})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case models.ErrorCodeValidationFailed, models.ErrorCodeCardOwnershipMismatch:
		status = http.StatusUnprocessableEntity
	case models.ErrorCodeClientNotFound, models.ErrorCodeCardNotFound, models.ErrorCodeChargeNotFound:
		status = http.StatusNotFound
	case models.ErrorCodeChargeNotRefundable, models.ErrorCodeChargeAlreadyRefunded:
		status = http.StatusConflict
	case models.ErrorCodeStorageError:
		logger.Error("storage error", zap.Error(err))
	}

	c.JSON(status, gin.H{
		"code":  appErr.Code,
		"error": appErr.Message,
	})
}

func respondBindingError(c *gin.Context) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"code":  models.ErrorCodeValidationFailed,
		"error": "Invalid request body",
	})
}
