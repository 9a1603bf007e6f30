package pdf_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
	"github.com/techsolutionsutrecht/offerte/internal/render/pdf"
)

var company = models.CompanyInfo{
	Name:    "TechSolutionsUtrecht",
	Website: "https://www.techsolutionsutrecht.nl/",
	Phone:   "+31 623434286",
	Kvk:     "99202301",
	VatID:   "NL005375937B46",
	Email:   "info@techsolutionsutrecht.nl",
	Address: "St.-ludgerusstraat 199 / 3553 CW Utrecht",
	IBAN:    "NL61 INGB 0116 4234 63",
}

func sampleInvoice() models.Invoice {
	inv := models.Invoice{
		ID:            "k3j4h5g6f7d8s9a0",
		Type:          models.DocumentProforma,
		InvoiceNumber: "PI-2026-0042",
		Date:          "2026-03-14",
		DueDate:       "2026-04-14",
		ClientName:    "Jan de Vries",
		ClientEmail:   "a@b.com",
		ClientCompany: "De Vries B.V.",
		Items: []models.LineItem{
			{ID: "1", Description: "Website ontwerp", Quantity: 1, UnitPrice: 1250},
			{ID: "2", Description: "Hosting (12 maanden)", Quantity: 12, UnitPrice: 9.95},
		},
		VatRate: 21,
		Notes:   "Inclusief twee revisierondes.",
		Status:  models.StatusPending,
	}
	inv.Recalculate()
	return inv
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()
	r := require.New(t)

	renderer := pdf.NewRenderer(company)

	artifact, err := renderer.Render(context.Background(), sampleInvoice())
	r.NoError(err)

	r.Equal("PI-2026-0042.pdf", artifact.FileName)
	r.Equal(pdf.ContentType, artifact.ContentType)
	r.Equal(2, artifact.Pages)
	r.True(bytes.HasPrefix(artifact.Content, []byte("%PDF-")))
}

func TestRenderer_RenderApproved(t *testing.T) {
	t.Parallel()
	r := require.New(t)

	inv := sampleInvoice()
	inv.Type = models.DocumentInvoice
	inv.InvoiceNumber = "INV-2026-0007"
	approvedAt := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)
	inv.Status = models.StatusApproved
	inv.ApprovedAt = &approvedAt
	inv.ApprovedBy = "a@b.com"

	artifact, err := pdf.NewRenderer(company).Render(context.Background(), inv)
	r.NoError(err)
	r.Equal("INV-2026-0007.pdf", artifact.FileName)
	r.Equal(2, artifact.Pages)
}

func TestRenderer_RenderManyItemsKeepsTwoPages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		items    int
		approved bool
		notes    string
	}{
		{name: "fits after shrinking", items: 20},
		{name: "overflows to page two", items: 40},
		{name: "overflows when approved", items: 40, approved: true},
		{name: "more than both pages hold", items: 250},
		{name: "long notes", items: 60, notes: strings.Repeat("Meerwerk wordt apart gefactureerd op basis van nacalculatie. ", 80)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := require.New(t)

			inv := sampleInvoice()
			inv.Items = nil
			for i := range tt.items {
				inv.Items = append(inv.Items, models.LineItem{
					ID:          fmt.Sprint(i + 1),
					Description: fmt.Sprintf("Regel %d", i+1),
					Quantity:    1,
					UnitPrice:   10,
				})
			}
			if tt.notes != "" {
				inv.Notes = tt.notes
			}
			if tt.approved {
				approvedAt := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)
				inv.Status = models.StatusApproved
				inv.ApprovedAt = &approvedAt
				inv.ApprovedBy = "a@b.com"
			}
			inv.Recalculate()

			artifact, err := pdf.NewRenderer(company).Render(context.Background(), inv)
			r.NoError(err)
			r.Equal(2, artifact.Pages)
			r.True(bytes.HasPrefix(artifact.Content, []byte("%PDF-")))
		})
	}
}

func TestRenderer_RenderErrors(t *testing.T) {
	t.Parallel()

	renderer := pdf.NewRenderer(company)

	inv := sampleInvoice()
	inv.InvoiceNumber = ""
	_, err := renderer.Render(context.Background(), inv)
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = renderer.Render(ctx, sampleInvoice())
	require.ErrorIs(t, err, context.Canceled)
}

func TestFormatEuro(t *testing.T) {
	t.Parallel()

	tests := []struct {
		amount float64
		want   string
	}{
		{0, "€ 0,00"},
		{9.95, "€ 9,95"},
		{119.4, "€ 119,40"},
		{1250, "€ 1.250,00"},
		{1234567.891, "€ 1.234.567,89"},
		{-42.5, "€ -42,50"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, pdf.FormatEuro(tt.amount))
		})
	}
}
