package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/techsolutionsutrecht/offerte/internal/config"
	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
	"github.com/techsolutionsutrecht/offerte/internal/service/emails"
)

// Store is the subset of the record store the engine needs.
type Store interface {
	Get(ctx context.Context, id string) (models.Invoice, error)
	Upsert(ctx context.Context, invoice models.Invoice) error
}

// Notifier delivers emails.
type Notifier interface {
	Send(ctx context.Context, msg models.EmailMessage) error
}

// Result describes an issued code.
type Result struct {
	InvoiceID string    `json:"invoiceId"`
	SentTo    string    `json:"sentTo"`
	SentAt    time.Time `json:"sentAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Delivered bool      `json:"delivered"`
}

// Service issues one-time codes and checks submitted codes against a record.
type Service struct {
	store    Store
	notifier Notifier
	company  models.CompanyInfo
	codeTTL  time.Duration
	logger   *zap.Logger
	now      func() time.Time
	generate func() (string, error)
}

// NewService wires a verification engine.
func NewService(store Store, notifier Notifier, cfg config.VerificationConfig, company models.CompanyInfo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.CodeTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{
		store:    store,
		notifier: notifier,
		company:  company,
		codeTTL:  ttl,
		logger:   logger,
		now:      time.Now,
		generate: models.GenerateVerificationCode,
	}
}

// RequestCode issues a code when the submitted email matches the client email.
// A mismatch has no side effects.
func (s *Service) RequestCode(ctx context.Context, id, submittedEmail string) (Result, error) {
	invoice, err := s.store.Get(ctx, id)
	if err != nil {
		return Result{}, err
	}

	if !invoice.EmailMatches(submittedEmail) {
		s.logger.Info("verification email mismatch", zap.String("invoice_id", id))
		return Result{}, models.ErrEmailMismatch
	}

	return s.issue(ctx, invoice)
}

// ResendCode issues a fresh code without checking the email. Rate limiting is
// left to the caller.
func (s *Service) ResendCode(ctx context.Context, id string) (Result, error) {
	invoice, err := s.store.Get(ctx, id)
	if err != nil {
		return Result{}, err
	}

	return s.issue(ctx, invoice)
}

// VerifyCode compares the submitted digits with the stored code.
// The stored expiry is not consulted.
func (s *Service) VerifyCode(ctx context.Context, id, submitted string) error {
	invoice, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if invoice.VerificationCode == "" || submitted != invoice.VerificationCode {
		s.logger.Info("verification code mismatch", zap.String("invoice_id", id))
		return models.ErrCodeMismatch
	}

	if invoice.CodeExpiry != nil && s.now().After(*invoice.CodeExpiry) {
		s.logger.Debug("accepted code past its stored expiry", zap.String("invoice_id", id), zap.Time("expiry", *invoice.CodeExpiry))
	}
	return nil
}

// issue generates, persists and then emails a code. Persistence happens first so
// the code is verifiable even when the email never arrives.
func (s *Service) issue(ctx context.Context, invoice models.Invoice) (Result, error) {
	code, err := s.generate()
	if err != nil {
		return Result{}, err
	}

	now := s.now()
	expiry := now.Add(s.codeTTL)

	invoice.VerificationCode = code
	invoice.CodeExpiry = &expiry
	invoice.UpdatedAt = now

	if err := s.store.Upsert(ctx, invoice); err != nil {
		if !errors.Is(err, models.ErrPersistenceFailed) {
			err = fmt.Errorf("%w: %v", models.ErrPersistenceFailed, err)
		}
		return Result{}, err
	}

	result := Result{
		InvoiceID: invoice.ID,
		SentTo:    invoice.ClientEmail,
		SentAt:    now,
		ExpiresAt: expiry,
	}

	msg, err := emails.Verification(s.company, invoice.ClientEmail, code, s.codeTTL)
	if err == nil {
		err = s.notifier.Send(ctx, msg)
	}
	if err != nil {
		s.logger.Warn("verification email not delivered, code persisted",
			zap.String("invoice_id", invoice.ID),
			zap.String("code", code),
			zap.Error(err))
		return result, fmt.Errorf("%w: %v", models.ErrDeliveryFailed, err)
	}

	result.Delivered = true
	s.logger.Info("verification code sent", zap.String("invoice_id", invoice.ID), zap.Time("expires_at", expiry))
	return result, nil
}
