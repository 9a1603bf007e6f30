package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
	"github.com/techsolutionsutrecht/offerte/pkg/clients/smtp"
)

// EmailHandler exposes the email dispatch endpoint in front of SMTP.
type EmailHandler struct {
	sender smtp.Sender
	logger *zap.Logger
}

// NewEmailHandler constructs the dispatch endpoint handler.
func NewEmailHandler(sender smtp.Sender, logger *zap.Logger) *EmailHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailHandler{sender: sender, logger: logger}
}

// Send relays a message with optional attachments.
func (h *EmailHandler) Send(c *gin.Context) {
	var msg models.EmailMessage
	if err := c.ShouldBindJSON(&msg); err != nil || msg.To == "" || msg.Subject == "" || msg.HTML == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}

	if err := h.sender.Send(msg); err != nil {
		h.logger.Error("email send error", zap.String("subject", msg.Subject), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send email", "error": err.Error()})
		return
	}

	h.logger.Info("email sent", zap.String("subject", msg.Subject), zap.Int("attachments", len(msg.Attachments)))
	c.JSON(http.StatusOK, gin.H{"message": "Email sent successfully"})
}
