package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
)

const (
	approvalsTab   = "Approvals"
	approvalsWidth = 6
)

// Ledger appends committed approvals to a spreadsheet for bookkeeping.
type Ledger struct {
	repo Repository
}

// NewLedger wraps a sheets repository.
func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// RecordApproval appends one row describing an approved invoice.
func (l *Ledger) RecordApproval(ctx context.Context, invoice models.Invoice) error {
	approvedAt := ""
	if invoice.ApprovedAt != nil {
		approvedAt = invoice.ApprovedAt.UTC().Format(time.RFC3339)
	}

	row := []string{
		approvedAt,
		invoice.InvoiceNumber,
		string(invoice.Type),
		invoice.ClientName,
		invoice.ClientEmail,
		fmt.Sprintf("%.2f", invoice.Total),
	}

	if err := l.repo.AppendRow(ctx, approvalsTab, row); err != nil {
		return fmt.Errorf("record approval %s: %w", invoice.InvoiceNumber, err)
	}
	return nil
}

// Approvals returns the invoice numbers already present in the ledger.
func (l *Ledger) Approvals(ctx context.Context) ([]string, error) {
	rows, err := l.repo.Rows(ctx, approvalsTab, approvalsWidth)
	if err != nil {
		return nil, fmt.Errorf("load approvals: %w", err)
	}

	numbers := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		numbers = append(numbers, row[1])
	}
	return numbers, nil
}
