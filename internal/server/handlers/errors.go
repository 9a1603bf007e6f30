package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
	"github.com/techsolutionsutrecht/offerte/internal/service/records"
	"github.com/techsolutionsutrecht/offerte/internal/service/verification"
)

// respondError maps domain errors to HTTP responses.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var cooldown *verification.CooldownError
	if errors.As(err, &cooldown) {
		retryAfter := cooldown.RetryAfterSeconds()
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "please wait before requesting a new code", "retryAfter": retryAfter})
		return
	}

	var invalid *records.ValidationError
	if errors.As(err, &invalid) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record", "problems": invalid.Problems})
		return
	}

	switch {
	case errors.Is(err, models.ErrEmailMismatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "email address does not match"})
	case errors.Is(err, models.ErrCodeMismatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid verification code"})
	case errors.Is(err, models.ErrRecordNotFound), errors.Is(err, models.ErrDocumentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, models.ErrNotVerified):
		c.JSON(http.StatusForbidden, gin.H{"error": "verification required"})
	case errors.Is(err, models.ErrInvalidRecord):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record"})
	case errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, verification.ErrInvalidStep):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrResendCooldown):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "please wait before requesting a new code"})
	case errors.Is(err, models.ErrDeliveryFailed):
		logger.Warn("email delivery failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "verification code could not be emailed"})
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
