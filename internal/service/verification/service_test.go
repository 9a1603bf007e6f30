package verification

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/techsolutionsutrecht/offerte/internal/config"
	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
	"github.com/techsolutionsutrecht/offerte/internal/repository/memory"
)

type recordingNotifier struct {
	sent []models.EmailMessage
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, msg models.EmailMessage) error {
	n.sent = append(n.sent, msg)
	return n.err
}

type failingStore struct {
	*memory.Repository
}

func (failingStore) Upsert(context.Context, models.Invoice) error {
	return errors.New("connection reset")
}

var testCompany = models.CompanyInfo{Name: "TechSolutionsUtrecht", Email: "info@example.com", Website: "https://example.com"}

func seed(t *testing.T, store *memory.Repository) models.Invoice {
	t.Helper()

	invoice := models.Invoice{
		ID:            "inv-1",
		Type:          models.DocumentProforma,
		InvoiceNumber: "PI-2026-0001",
		ClientName:    "Anna",
		ClientEmail:   "a@b.com",
		Status:        models.StatusPending,
	}
	require.NoError(t, store.Upsert(context.Background(), invoice))
	return invoice
}

func newTestService(store Store, notifier Notifier) *Service {
	cfg := config.VerificationConfig{CodeTTL: 10 * time.Minute, ResendCooldown: time.Minute}
	return NewService(store, notifier, cfg, testCompany, nil)
}

func TestRequestCode_CaseInsensitiveMatch(t *testing.T) {
	t.Parallel()

	store := memory.NewRepository()
	seed(t, store)
	notifier := &recordingNotifier{}
	svc := newTestService(store, notifier)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	result, err := svc.RequestCode(context.Background(), "inv-1", "A@B.COM")
	require.NoError(t, err)
	require.True(t, result.Delivered)
	require.Equal(t, "a@b.com", result.SentTo)
	require.Equal(t, now.Add(10*time.Minute), result.ExpiresAt)

	stored, err := store.Get(context.Background(), "inv-1")
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^\d{6}$`), stored.VerificationCode)
	require.NotNil(t, stored.CodeExpiry)
	require.Equal(t, now.Add(10*time.Minute), *stored.CodeExpiry)

	require.Len(t, notifier.sent, 1)
	require.Equal(t, "a@b.com", notifier.sent[0].To)
	require.Equal(t, "Uw Verificatiecode - TechSolutionsUtrecht", notifier.sent[0].Subject)
	require.Contains(t, notifier.sent[0].HTML, stored.VerificationCode)
}

func TestRequestCode_MismatchHasNoSideEffects(t *testing.T) {
	t.Parallel()

	store := memory.NewRepository()
	seed(t, store)
	notifier := &recordingNotifier{}
	svc := newTestService(store, notifier)

	_, err := svc.RequestCode(context.Background(), "inv-1", "x@y.com")
	require.ErrorIs(t, err, models.ErrEmailMismatch)

	stored, err := store.Get(context.Background(), "inv-1")
	require.NoError(t, err)
	require.Empty(t, stored.VerificationCode)
	require.Nil(t, stored.CodeExpiry)
	require.Empty(t, notifier.sent)
}

func TestRequestCode_UnknownRecord(t *testing.T) {
	t.Parallel()

	svc := newTestService(memory.NewRepository(), &recordingNotifier{})

	_, err := svc.RequestCode(context.Background(), "missing", "a@b.com")
	require.ErrorIs(t, err, models.ErrRecordNotFound)
}

func TestRequestCode_DeliveryFailureKeepsCode(t *testing.T) {
	t.Parallel()

	store := memory.NewRepository()
	seed(t, store)
	svc := newTestService(store, &recordingNotifier{err: errors.New("smtp down")})
	svc.generate = func() (string, error) { return "482913", nil }

	result, err := svc.RequestCode(context.Background(), "inv-1", "a@b.com")
	require.ErrorIs(t, err, models.ErrDeliveryFailed)
	require.False(t, result.Delivered)

	require.NoError(t, svc.VerifyCode(context.Background(), "inv-1", "482913"))
}

func TestRequestCode_PersistenceFailureSkipsEmail(t *testing.T) {
	t.Parallel()

	store := memory.NewRepository()
	seed(t, store)
	notifier := &recordingNotifier{}
	svc := newTestService(failingStore{store}, notifier)

	_, err := svc.RequestCode(context.Background(), "inv-1", "a@b.com")
	require.ErrorIs(t, err, models.ErrPersistenceFailed)
	require.Empty(t, notifier.sent)
}

func TestResendCode_OverwritesPreviousCode(t *testing.T) {
	t.Parallel()

	store := memory.NewRepository()
	seed(t, store)
	svc := newTestService(store, &recordingNotifier{})

	codes := []string{"111111", "222222"}
	svc.generate = func() (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}

	_, err := svc.RequestCode(context.Background(), "inv-1", "a@b.com")
	require.NoError(t, err)
	_, err = svc.ResendCode(context.Background(), "inv-1")
	require.NoError(t, err)

	require.ErrorIs(t, svc.VerifyCode(context.Background(), "inv-1", "111111"), models.ErrCodeMismatch)
	require.NoError(t, svc.VerifyCode(context.Background(), "inv-1", "222222"))
}

func TestVerifyCode(t *testing.T) {
	t.Parallel()

	store := memory.NewRepository()
	seed(t, store)
	svc := newTestService(store, &recordingNotifier{})
	svc.generate = func() (string, error) { return "123456", nil }

	tests := []struct {
		name      string
		submitted string
		wantErr   error
	}{
		{name: "exact match", submitted: "123456"},
		{name: "wrong digits", submitted: "000000", wantErr: models.ErrCodeMismatch},
		{name: "too short", submitted: "12345", wantErr: models.ErrCodeMismatch},
		{name: "surrounding space", submitted: " 123456", wantErr: models.ErrCodeMismatch},
		{name: "empty", submitted: "", wantErr: models.ErrCodeMismatch},
	}

	_, err := svc.RequestCode(context.Background(), "inv-1", "a@b.com")
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.VerifyCode(context.Background(), "inv-1", tt.submitted)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestVerifyCode_WithoutIssuedCode(t *testing.T) {
	t.Parallel()

	store := memory.NewRepository()
	seed(t, store)
	svc := newTestService(store, &recordingNotifier{})

	require.ErrorIs(t, svc.VerifyCode(context.Background(), "inv-1", ""), models.ErrCodeMismatch)
}

func TestVerifyCode_AcceptsAfterExpiry(t *testing.T) {
	t.Parallel()

	store := memory.NewRepository()
	seed(t, store)
	svc := newTestService(store, &recordingNotifier{})
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	svc.generate = func() (string, error) { return "654321", nil }

	_, err := svc.RequestCode(context.Background(), "inv-1", "a@b.com")
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(time.Hour) }
	require.NoError(t, svc.VerifyCode(context.Background(), "inv-1", "654321"))
}
