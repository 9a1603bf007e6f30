package reporting

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
)

// Store lists every invoice.
type Store interface {
	GetAll(ctx context.Context) ([]models.Invoice, error)
}

// LedgerReader lists the invoice numbers recorded in the approval ledger.
type LedgerReader interface {
	Approvals(ctx context.Context) ([]string, error)
}

// Service aggregates invoices into the operator digest.
type Service struct {
	store      Store
	ledger     LedgerReader
	staleAfter time.Duration
	logger     *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(store Store, staleAfter time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if staleAfter <= 0 {
		staleAfter = 7 * 24 * time.Hour
	}
	return &Service{store: store, staleAfter: staleAfter, logger: logger}
}

// WithLedger makes the digest list approved invoices missing from the ledger.
func (s *Service) WithLedger(ledger LedgerReader) *Service {
	s.ledger = ledger
	return s
}

// Summarize counts invoices per status and lists pending invoices older than
// the stale threshold, oldest first.
func (s *Service) Summarize(ctx context.Context, now time.Time) (models.Summary, error) {
	invoices, err := s.store.GetAll(ctx)
	if err != nil {
		return models.Summary{}, fmt.Errorf("load invoices: %w", err)
	}

	summary := models.Summary{GeneratedAt: now, Stale: []models.StaleInvoice{}}
	approvedTotal := decimal.Zero
	pendingTotal := decimal.Zero
	cutoff := now.Add(-s.staleAfter)

	for _, invoice := range invoices {
		switch invoice.Status {
		case models.StatusApproved:
			summary.Approved++
			approvedTotal = approvedTotal.Add(decimal.NewFromFloat(invoice.Total))
		case models.StatusRejected:
			summary.Rejected++
		case models.StatusPending:
			summary.Pending++
			pendingTotal = pendingTotal.Add(decimal.NewFromFloat(invoice.Total))
			if !invoice.CreatedAt.IsZero() && invoice.CreatedAt.Before(cutoff) {
				summary.Stale = append(summary.Stale, models.StaleInvoice{
					ID:            invoice.ID,
					InvoiceNumber: invoice.InvoiceNumber,
					ClientName:    invoice.ClientName,
					ClientEmail:   invoice.ClientEmail,
					CreatedAt:     invoice.CreatedAt,
				})
			}
		default:
			s.logger.Debug("skip invoice with unknown status", zap.String("invoice_id", invoice.ID), zap.String("status", string(invoice.Status)))
		}
	}

	summary.Unrecorded = s.unrecorded(ctx, invoices)

	slices.SortFunc(summary.Stale, func(a, b models.StaleInvoice) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	summary.ApprovedTotal = approvedTotal.Round(2).InexactFloat64()
	summary.PendingTotal = pendingTotal.Round(2).InexactFloat64()
	return summary, nil
}

// unrecorded returns the numbers of approved invoices absent from the ledger.
// Ledger errors are logged and yield no entries.
func (s *Service) unrecorded(ctx context.Context, invoices []models.Invoice) []string {
	if s.ledger == nil {
		return nil
	}

	numbers, err := s.ledger.Approvals(ctx)
	if err != nil {
		s.logger.Warn("failed to read approval ledger", zap.Error(err))
		return nil
	}

	recorded := make(map[string]struct{}, len(numbers))
	for _, number := range numbers {
		recorded[number] = struct{}{}
	}

	var missing []string
	for _, invoice := range invoices {
		if !invoice.IsApproved() {
			continue
		}
		if _, ok := recorded[invoice.InvoiceNumber]; !ok {
			missing = append(missing, invoice.InvoiceNumber)
		}
	}
	return missing
}
