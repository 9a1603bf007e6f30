package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
	"github.com/techsolutionsutrecht/offerte/internal/server/middleware"
	"github.com/techsolutionsutrecht/offerte/internal/service/approval"
	"github.com/techsolutionsutrecht/offerte/internal/service/verification"
)

// InvoiceStore reads invoices and their rendered documents.
type InvoiceStore interface {
	Get(ctx context.Context, id string) (models.Invoice, error)
	GetDocument(ctx context.Context, invoiceID string) (models.Document, error)
}

// VerificationFlow tracks a viewer through email verification.
type VerificationFlow interface {
	State(sessionID, invoiceID string) verification.Session
	IsVerified(sessionID, invoiceID string) bool
	SubmitEmail(ctx context.Context, sessionID, invoiceID, email string) (verification.Result, error)
	Resend(ctx context.Context, sessionID, invoiceID string) (verification.Result, error)
	SubmitCode(ctx context.Context, sessionID, invoiceID, code string) error
	ChangeEmail(sessionID, invoiceID string) error
}

// Approver commits client approvals.
type Approver interface {
	Approve(ctx context.Context, id, approverEmail string) (approval.Outcome, error)
}

// ViewerHandler serves the client-facing invoice pages.
type ViewerHandler struct {
	store    InvoiceStore
	flow     VerificationFlow
	approver Approver
	logger   *zap.Logger
}

func NewViewerHandler(store InvoiceStore, flow VerificationFlow, approver Approver, logger *zap.Logger) *ViewerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewerHandler{store: store, flow: flow, approver: approver, logger: logger}
}

type gateResponse struct {
	ID       string            `json:"id"`
	Status   models.Status     `json:"status"`
	Step     verification.Step `json:"step"`
	Verified bool              `json:"verified"`
}

type verificationResponse struct {
	Step      verification.Step `json:"step"`
	SentTo    string            `json:"sentTo,omitempty"`
	ExpiresAt string            `json:"expiresAt,omitempty"`
}

// Show returns the full invoice once approved, otherwise only the
// verification state of the viewer.
func (h *ViewerHandler) Show(c *gin.Context) {
	id := c.Param("id")
	invoice, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if invoice.IsApproved() {
		c.JSON(http.StatusOK, invoice)
		return
	}

	state := h.flow.State(middleware.ViewerSessionID(c), id)
	c.JSON(http.StatusOK, gateResponse{
		ID:       invoice.ID,
		Status:   invoice.Status,
		Step:     state.Step,
		Verified: state.Step == verification.StepVerified,
	})
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

// SubmitEmail checks the address and emails a code.
func (h *ViewerHandler) SubmitEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	id := c.Param("id")
	session := middleware.ViewerSessionID(c)
	result, err := h.flow.SubmitEmail(c.Request.Context(), session, id, req.Email)
	h.respondIssued(c, session, id, result, err)
}

// Resend emails a fresh code after the cooldown.
func (h *ViewerHandler) Resend(c *gin.Context) {
	id := c.Param("id")
	session := middleware.ViewerSessionID(c)
	result, err := h.flow.Resend(c.Request.Context(), session, id)
	h.respondIssued(c, session, id, result, err)
}

func (h *ViewerHandler) respondIssued(c *gin.Context, session, id string, result verification.Result, err error) {
	if err != nil && !errors.Is(err, models.ErrDeliveryFailed) {
		respondError(c, h.logger, err)
		return
	}

	resp := verificationResponse{
		Step:      h.flow.State(session, id).Step,
		SentTo:    result.SentTo,
		ExpiresAt: result.ExpiresAt.Format(time.RFC3339),
	}
	if err != nil {
		h.logger.Warn("verification email not delivered", zap.String("invoice_id", id), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "verification code could not be emailed", "step": resp.Step})
		return
	}
	c.JSON(http.StatusOK, resp)
}

type codeRequest struct {
	Code   string   `json:"code"`
	Digits []string `json:"digits"`
}

// SubmitCode verifies the entered digits.
func (h *ViewerHandler) SubmitCode(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	code := req.Code
	if code == "" {
		code = strings.Join(req.Digits, "")
	}

	id := c.Param("id")
	session := middleware.ViewerSessionID(c)
	if err := h.flow.SubmitCode(c.Request.Context(), session, id, code); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, verificationResponse{Step: verification.StepVerified})
}

// ChangeEmail returns the viewer to the email step.
func (h *ViewerHandler) ChangeEmail(c *gin.Context) {
	id := c.Param("id")
	session := middleware.ViewerSessionID(c)
	if err := h.flow.ChangeEmail(session, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, verificationResponse{Step: h.flow.State(session, id).Step})
}

// Document returns the full invoice to a verified viewer.
func (h *ViewerHandler) Document(c *gin.Context) {
	invoice, ok := h.verifiedInvoice(c, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// Approve commits the client's approval. The approver is the verified client email.
func (h *ViewerHandler) Approve(c *gin.Context) {
	invoice, ok := h.verifiedInvoice(c, false)
	if !ok {
		return
	}

	outcome, err := h.approver.Approve(c.Request.Context(), invoice.ID, invoice.ClientEmail)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// PDF streams the stored document of an approved invoice.
func (h *ViewerHandler) PDF(c *gin.Context) {
	id := c.Param("id")
	invoice, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !invoice.IsApproved() {
		c.JSON(http.StatusConflict, gin.H{"error": "invoice is not approved"})
		return
	}

	doc, err := h.store.GetDocument(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}

// verifiedInvoice loads the invoice and aborts unless the viewer is verified.
// Approved invoices are readable without verification when allowApproved is set.
func (h *ViewerHandler) verifiedInvoice(c *gin.Context, allowApproved bool) (models.Invoice, bool) {
	id := c.Param("id")
	invoice, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return models.Invoice{}, false
	}

	if allowApproved && invoice.IsApproved() {
		return invoice, true
	}

	if !h.flow.IsVerified(middleware.ViewerSessionID(c), id) {
		respondError(c, h.logger, models.ErrNotVerified)
		return models.Invoice{}, false
	}
	return invoice, true
}
