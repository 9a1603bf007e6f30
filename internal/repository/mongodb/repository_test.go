package mongodb_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
	"github.com/techsolutionsutrecht/offerte/internal/repository/mongodb"
)

func newTestRepository(t *testing.T) *mongodb.MongoDBRepository {
	t.Helper()

	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := mongodb.NewMongoDBRepository(ctx, uri, "offerte_test_"+models.GenerateID(), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = repo.Close(context.Background())
	})

	return repo
}

func TestMongoDBRepository_Lifecycle(t *testing.T) {
	r := require.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	created := time.Now().UTC().Truncate(time.Millisecond)
	invoice := models.Invoice{
		ID:            models.GenerateID(),
		Type:          models.DocumentProforma,
		InvoiceNumber: "PI-2026-0042",
		ClientName:    "Client",
		ClientEmail:   "a@b.com",
		Items:         []models.LineItem{{ID: "1", Description: "Work", Quantity: 2, UnitPrice: 50, Total: 100}},
		VatRate:       21,
		Status:        models.StatusPending,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	invoice.Recalculate()

	r.NoError(repo.Upsert(ctx, invoice))

	got, err := repo.Get(ctx, invoice.ID)
	r.NoError(err)
	r.Equal(invoice.InvoiceNumber, got.InvoiceNumber)
	r.InDelta(121.0, got.Total, 0.005)

	expiry := created.Add(10 * time.Minute)
	invoice.VerificationCode = "123456"
	invoice.CodeExpiry = &expiry
	r.NoError(repo.Upsert(ctx, invoice))

	got, err = repo.Get(ctx, invoice.ID)
	r.NoError(err)
	r.Equal("123456", got.VerificationCode)
	r.NotNil(got.CodeExpiry)

	all, err := repo.GetAll(ctx)
	r.NoError(err)
	r.Len(all, 1)

	r.NoError(repo.SaveDocument(ctx, models.Document{InvoiceID: invoice.ID, FileName: invoice.FileName(), Content: []byte("%PDF-1.3"), Pages: 2}))
	doc, err := repo.GetDocument(ctx, invoice.ID)
	r.NoError(err)
	r.Equal([]byte("%PDF-1.3"), doc.Content)

	r.NoError(repo.Delete(ctx, invoice.ID))
	_, err = repo.Get(ctx, invoice.ID)
	r.ErrorIs(err, models.ErrRecordNotFound)
	_, err = repo.GetDocument(ctx, invoice.ID)
	r.ErrorIs(err, models.ErrDocumentNotFound)
}
