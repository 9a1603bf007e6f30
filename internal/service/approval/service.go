package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
	"github.com/techsolutionsutrecht/offerte/internal/render/pdf"
	"github.com/techsolutionsutrecht/offerte/internal/service/emails"
)

// Store persists invoices and their rendered documents.
type Store interface {
	Get(ctx context.Context, id string) (models.Invoice, error)
	Upsert(ctx context.Context, invoice models.Invoice) error
	SaveDocument(ctx context.Context, doc models.Document) error
}

// Renderer produces the PDF for an invoice.
type Renderer interface {
	Render(ctx context.Context, invoice models.Invoice) (pdf.Artifact, error)
}

// Notifier delivers emails.
type Notifier interface {
	Send(ctx context.Context, msg models.EmailMessage) error
}

// Ledger records committed approvals outside the record store.
type Ledger interface {
	RecordApproval(ctx context.Context, invoice models.Invoice) error
}

// Outcome reports what happened after the approval was committed.
// Errors in the follow-up steps never undo the approval.
type Outcome struct {
	Invoice         models.Invoice `json:"invoice"`
	AlreadyApproved bool           `json:"alreadyApproved"`
	DocumentName    string         `json:"documentName,omitempty"`
	Rendered        bool           `json:"rendered"`
	Notified        bool           `json:"notified"`
	Recorded        bool           `json:"recorded"`
	Warnings        []string       `json:"warnings,omitempty"`
}

// Service commits client approvals and produces their artifacts.
type Service struct {
	store    Store
	renderer Renderer
	notifier Notifier
	ledger   Ledger
	company  models.CompanyInfo
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the approval workflow. ledger may be nil.
func NewService(store Store, renderer Renderer, notifier Notifier, ledger Ledger, company models.CompanyInfo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		renderer: renderer,
		notifier: notifier,
		ledger:   ledger,
		company:  company,
		logger:   logger,
		now:      time.Now,
	}
}

// Approve marks the invoice approved by approverEmail. Approving an approved
// invoice is a no-op.
func (s *Service) Approve(ctx context.Context, id, approverEmail string) (Outcome, error) {
	invoice, err := s.store.Get(ctx, id)
	if err != nil {
		return Outcome{}, err
	}

	if invoice.IsApproved() {
		s.logger.Info("invoice already approved", zap.String("invoice_id", id))
		return Outcome{Invoice: invoice, AlreadyApproved: true, DocumentName: invoice.FileName()}, nil
	}

	if !models.CanTransition(invoice.Status, models.StatusApproved) {
		return Outcome{}, fmt.Errorf("invoice %s is %s: %w", id, invoice.Status, models.ErrInvalidTransition)
	}

	now := s.now()
	invoice.Status = models.StatusApproved
	invoice.ApprovedAt = &now
	invoice.ApprovedBy = approverEmail
	invoice.UpdatedAt = now

	if err := s.store.Upsert(ctx, invoice); err != nil {
		if !errors.Is(err, models.ErrPersistenceFailed) {
			err = fmt.Errorf("%w: %v", models.ErrPersistenceFailed, err)
		}
		return Outcome{}, err
	}

	s.logger.Info("invoice approved",
		zap.String("invoice_id", id),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("approved_by", approverEmail))

	outcome := Outcome{Invoice: invoice, DocumentName: invoice.FileName()}

	doc := s.renderAndStore(ctx, invoice, &outcome)
	s.notify(ctx, invoice, doc, &outcome)
	s.record(ctx, invoice, &outcome)

	return outcome, nil
}

func (s *Service) renderAndStore(ctx context.Context, invoice models.Invoice, outcome *Outcome) *models.Document {
	artifact, err := s.renderer.Render(ctx, invoice)
	if err != nil {
		s.warn(outcome, "document rendering failed", invoice.ID, err)
		return nil
	}
	outcome.Rendered = true

	doc := models.Document{
		InvoiceID:   invoice.ID,
		FileName:    artifact.FileName,
		ContentType: artifact.ContentType,
		Pages:       artifact.Pages,
		Content:     artifact.Content,
		CreatedAt:   s.now(),
	}
	if err := s.store.SaveDocument(ctx, doc); err != nil {
		s.warn(outcome, "document storage failed", invoice.ID, err)
	}
	return &doc
}

func (s *Service) notify(ctx context.Context, invoice models.Invoice, doc *models.Document, outcome *Outcome) {
	recipients := []string{invoice.ClientEmail}
	if s.company.Email != "" && !invoice.EmailMatches(s.company.Email) {
		recipients = append(recipients, s.company.Email)
	}

	delivered := 0
	for _, to := range recipients {
		msg, err := emails.Approval(s.company, to, invoice, doc)
		if err == nil {
			err = s.notifier.Send(ctx, msg)
		}
		if err != nil {
			s.warn(outcome, "confirmation email to "+to+" failed", invoice.ID, err)
			continue
		}
		delivered++
	}
	outcome.Notified = delivered == len(recipients)
}

func (s *Service) record(ctx context.Context, invoice models.Invoice, outcome *Outcome) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.RecordApproval(ctx, invoice); err != nil {
		s.warn(outcome, "approval ledger append failed", invoice.ID, err)
		return
	}
	outcome.Recorded = true
}

func (s *Service) warn(outcome *Outcome, msg, invoiceID string, err error) {
	s.logger.Error(msg, zap.String("invoice_id", invoiceID), zap.Error(err))
	outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("%s: %v", msg, err))
}
