package records

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
)

const dateLayout = "2006-01-02"

// Store is the record store used by the editor.
type Store interface {
	Get(ctx context.Context, id string) (models.Invoice, error)
	GetAll(ctx context.Context) ([]models.Invoice, error)
	Upsert(ctx context.Context, invoice models.Invoice) error
	Delete(ctx context.Context, id string) error
}

// Draft holds the operator-editable fields of an invoice.
type Draft struct {
	Type          models.DocumentType `json:"type"`
	DueDate       string              `json:"dueDate"`
	ClientName    string              `json:"clientName"`
	ClientEmail   string              `json:"clientEmail"`
	ClientCompany string              `json:"clientCompany"`
	ClientAddress string              `json:"clientAddress"`
	ClientKvk     string              `json:"clientKvk"`
	Items         []DraftItem         `json:"items"`
	VatRate       float64             `json:"vatRate"`
	Notes         string              `json:"notes"`
}

// DraftItem is one editable line of a draft.
type DraftItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// ValidationError lists every problem found in a draft.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", models.ErrInvalidRecord, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return models.ErrInvalidRecord
}

// Validate checks a draft and normalizes its whitespace.
func (d *Draft) Validate() error {
	d.ClientName = strings.TrimSpace(d.ClientName)
	d.ClientEmail = strings.TrimSpace(d.ClientEmail)
	d.DueDate = strings.TrimSpace(d.DueDate)

	var problems []string
	if !d.Type.Valid() {
		problems = append(problems, fmt.Sprintf("type must be %q or %q", models.DocumentProforma, models.DocumentInvoice))
	}
	if d.ClientName == "" {
		problems = append(problems, "clientName is required")
	}
	if addr, err := mail.ParseAddress(d.ClientEmail); err != nil || addr.Address != d.ClientEmail {
		problems = append(problems, "clientEmail must be a valid email address")
	}
	if _, err := time.Parse(dateLayout, d.DueDate); err != nil {
		problems = append(problems, "dueDate must be formatted as YYYY-MM-DD")
	}
	if d.VatRate < 0 {
		problems = append(problems, "vatRate must not be negative")
	}
	if len(d.Items) == 0 {
		problems = append(problems, "at least one item is required")
	}
	for i, item := range d.Items {
		if strings.TrimSpace(item.Description) == "" {
			problems = append(problems, fmt.Sprintf("items[%d].description is required", i))
		}
		if item.Quantity < 0 || item.UnitPrice < 0 {
			problems = append(problems, fmt.Sprintf("items[%d] must not have negative quantity or price", i))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Service implements operator record management.
type Service struct {
	store         Store
	publicBaseURL string
	logger        *zap.Logger
	now           func() time.Time
}

// NewService creates a record editor. Share links are built on publicBaseURL.
func NewService(store Store, publicBaseURL string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:         store,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		logger:        logger,
		now:           time.Now,
	}
}

// Create validates the draft and stores a new pending invoice.
func (s *Service) Create(ctx context.Context, draft Draft) (models.Invoice, error) {
	if err := draft.Validate(); err != nil {
		return models.Invoice{}, err
	}

	now := s.now()
	invoice := models.Invoice{
		ID:            models.GenerateID(),
		InvoiceNumber: models.GenerateInvoiceNumber(draft.Type, now),
		Date:          now.Format(dateLayout),
		Status:        models.StatusPending,
		CreatedAt:     now,
	}
	apply(&invoice, draft)
	invoice.UpdatedAt = now

	if err := s.store.Upsert(ctx, invoice); err != nil {
		return models.Invoice{}, err
	}

	s.logger.Info("invoice created",
		zap.String("invoice_id", invoice.ID),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Float64("total", invoice.Total))
	return invoice, nil
}

// Update replaces the editable fields of an existing invoice. Identity, status,
// approval and verification fields are kept.
func (s *Service) Update(ctx context.Context, id string, draft Draft) (models.Invoice, error) {
	if err := draft.Validate(); err != nil {
		return models.Invoice{}, err
	}

	invoice, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Invoice{}, err
	}

	apply(&invoice, draft)
	invoice.UpdatedAt = s.now()

	if err := s.store.Upsert(ctx, invoice); err != nil {
		return models.Invoice{}, err
	}

	s.logger.Info("invoice updated", zap.String("invoice_id", id))
	return invoice, nil
}

// Get loads one invoice.
func (s *Service) Get(ctx context.Context, id string) (models.Invoice, error) {
	return s.store.Get(ctx, id)
}

// List returns every invoice, newest first.
func (s *Service) List(ctx context.Context) ([]models.Invoice, error) {
	return s.store.GetAll(ctx)
}

// Delete removes an invoice. Deleting an unknown id reports ErrRecordNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if !errors.Is(err, models.ErrPersistenceFailed) {
			err = fmt.Errorf("%w: %v", models.ErrPersistenceFailed, err)
		}
		return err
	}

	s.logger.Info("invoice deleted", zap.String("invoice_id", id))
	return nil
}

// ShareLink is the client-facing URL of an invoice.
func (s *Service) ShareLink(id string) string {
	return fmt.Sprintf("%s/#/invoice/%s", s.publicBaseURL, id)
}

func apply(invoice *models.Invoice, draft Draft) {
	invoice.Type = draft.Type
	invoice.DueDate = draft.DueDate
	invoice.ClientName = draft.ClientName
	invoice.ClientEmail = draft.ClientEmail
	invoice.ClientCompany = strings.TrimSpace(draft.ClientCompany)
	invoice.ClientAddress = strings.TrimSpace(draft.ClientAddress)
	invoice.ClientKvk = strings.TrimSpace(draft.ClientKvk)
	invoice.VatRate = draft.VatRate
	invoice.Notes = draft.Notes

	invoice.Items = make([]models.LineItem, 0, len(draft.Items))
	for _, item := range draft.Items {
		id := item.ID
		if id == "" {
			id = models.GenerateLineItemID()
		}
		invoice.Items = append(invoice.Items, models.LineItem{
			ID:          id,
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	invoice.Recalculate()
}
