package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
	"github.com/techsolutionsutrecht/offerte/internal/service/records"
)

// RecordService is the operator-facing record editor.
type RecordService interface {
	Create(ctx context.Context, draft records.Draft) (models.Invoice, error)
	Update(ctx context.Context, id string, draft records.Draft) (models.Invoice, error)
	Get(ctx context.Context, id string) (models.Invoice, error)
	List(ctx context.Context) ([]models.Invoice, error)
	Delete(ctx context.Context, id string) error
	ShareLink(id string) string
}

// SessionForgetter drops viewer sessions of a removed invoice.
type SessionForgetter interface {
	Forget(invoiceID string)
}

// AdminHandler serves record management for the logged in operator.
type AdminHandler struct {
	records  RecordService
	sessions SessionForgetter
	logger   *zap.Logger
}

func NewAdminHandler(recordSvc RecordService, sessions SessionForgetter, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{records: recordSvc, sessions: sessions, logger: logger}
}

type invoiceResponse struct {
	models.Invoice
	ShareLink string `json:"shareLink"`
}

func (h *AdminHandler) present(invoice models.Invoice) invoiceResponse {
	return invoiceResponse{Invoice: invoice, ShareLink: h.records.ShareLink(invoice.ID)}
}

// List returns all invoices.
func (h *AdminHandler) List(c *gin.Context) {
	invoices, err := h.records.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]invoiceResponse, 0, len(invoices))
	for _, invoice := range invoices {
		out = append(out, h.present(invoice))
	}
	c.JSON(http.StatusOK, out)
}

// Create stores a new invoice from a draft.
func (h *AdminHandler) Create(c *gin.Context) {
	var draft records.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	invoice, err := h.records.Create(c.Request.Context(), draft)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, h.present(invoice))
}

// Get returns one invoice including its share link.
func (h *AdminHandler) Get(c *gin.Context) {
	invoice, err := h.records.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.present(invoice))
}

// Update replaces the editable fields of an invoice.
func (h *AdminHandler) Update(c *gin.Context) {
	var draft records.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	invoice, err := h.records.Update(c.Request.Context(), c.Param("id"), draft)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.present(invoice))
}

// Delete removes an invoice and forgets its viewer sessions.
func (h *AdminHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.records.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if h.sessions != nil {
		h.sessions.Forget(id)
	}
	c.Status(http.StatusNoContent)
}
