// Package memory provides an in-process record store with the same semantics
// as the MongoDB repository. It backs local runs and tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
)

// Repository keeps invoices and documents in maps guarded by a mutex.
type Repository struct {
	mu        sync.RWMutex
	invoices  map[string]models.Invoice
	documents map[string]models.Document
}

// NewRepository returns an empty store.
func NewRepository() *Repository {
	return &Repository{
		invoices:  make(map[string]models.Invoice),
		documents: make(map[string]models.Document),
	}
}

func (r *Repository) Get(_ context.Context, id string) (models.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	invoice, ok := r.invoices[id]
	if !ok {
		return models.Invoice{}, fmt.Errorf("invoice %s: %w", id, models.ErrRecordNotFound)
	}
	return cloneInvoice(invoice), nil
}

func (r *Repository) GetAll(_ context.Context) ([]models.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	invoices := make([]models.Invoice, 0, len(r.invoices))
	for _, invoice := range r.invoices {
		invoices = append(invoices, cloneInvoice(invoice))
	}

	slices.SortFunc(invoices, func(a, b models.Invoice) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return invoices, nil
}

func (r *Repository) Upsert(_ context.Context, invoice models.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.invoices[invoice.ID] = cloneInvoice(invoice)
	return nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.invoices, id)
	delete(r.documents, id)
	return nil
}

func (r *Repository) SaveDocument(_ context.Context, doc models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc.Content = slices.Clone(doc.Content)
	r.documents[doc.InvoiceID] = doc
	return nil
}

func (r *Repository) GetDocument(_ context.Context, invoiceID string) (models.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.documents[invoiceID]
	if !ok {
		return models.Document{}, fmt.Errorf("document %s: %w", invoiceID, models.ErrDocumentNotFound)
	}
	doc.Content = slices.Clone(doc.Content)
	return doc, nil
}

// cloneInvoice detaches slices and pointers so callers cannot mutate stored state.
func cloneInvoice(in models.Invoice) models.Invoice {
	out := in
	out.Items = slices.Clone(in.Items)
	if in.ApprovedAt != nil {
		t := *in.ApprovedAt
		out.ApprovedAt = &t
	}
	if in.CodeExpiry != nil {
		t := *in.CodeExpiry
		out.CodeExpiry = &t
	}
	return out
}
