package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType distinguishes a proforma quote from a final invoice.
type DocumentType string

const (
	DocumentProforma DocumentType = "proforma"
	DocumentInvoice  DocumentType = "invoice"
)

// Valid reports whether the type is one of the supported document kinds.
func (t DocumentType) Valid() bool {
	return t == DocumentProforma || t == DocumentInvoice
}

// Title returns the heading printed on rendered documents.
func (t DocumentType) Title() string {
	if t == DocumentProforma {
		return "OFFERTE"
	}
	return "FACTUUR"
}

// Status is the lifecycle state of an invoice record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// CanTransition reports whether a record may move from one status to another.
// Statuses only move forward out of pending.
func CanTransition(from, to Status) bool {
	if from != StatusPending {
		return false
	}
	return to == StatusApproved || to == StatusRejected
}

// LineItem is one billable row of an invoice.
type LineItem struct {
	ID          string  `bson:"id" json:"id"`
	Description string  `bson:"description" json:"description"`
	Quantity    float64 `bson:"quantity" json:"quantity"`
	UnitPrice   float64 `bson:"unit_price" json:"unitPrice"`
	Total       float64 `bson:"total" json:"total"` // Quantity * UnitPrice
}

// Recalculate derives the line total from quantity and unit price.
func (li *LineItem) Recalculate() {
	li.Total = li.amount().InexactFloat64()
}

func (li LineItem) amount() decimal.Decimal {
	return decimal.NewFromFloat(li.Quantity).Mul(decimal.NewFromFloat(li.UnitPrice))
}

// Invoice is a proforma quote or invoice addressed to a single client.
type Invoice struct {
	ID            string       `bson:"_id" json:"id"`
	Type          DocumentType `bson:"type" json:"type"`
	InvoiceNumber string       `bson:"invoice_number" json:"invoiceNumber"`
	Date          string       `bson:"date" json:"date"`
	DueDate       string       `bson:"due_date" json:"dueDate"`

	ClientName    string `bson:"client_name" json:"clientName"`
	ClientEmail   string `bson:"client_email" json:"clientEmail"`
	ClientCompany string `bson:"client_company,omitempty" json:"clientCompany,omitempty"`
	ClientAddress string `bson:"client_address,omitempty" json:"clientAddress,omitempty"`
	ClientKvk     string `bson:"client_kvk,omitempty" json:"clientKvk,omitempty"`

	Items     []LineItem `bson:"items" json:"items"`
	Subtotal  float64    `bson:"subtotal" json:"subtotal"`
	VatRate   float64    `bson:"vat_rate" json:"vatRate"`
	VatAmount float64    `bson:"vat_amount" json:"vatAmount"`
	Total     float64    `bson:"total" json:"total"`
	Notes     string     `bson:"notes,omitempty" json:"notes,omitempty"`

	Status     Status     `bson:"status" json:"status"`
	ApprovedAt *time.Time `bson:"approved_at,omitempty" json:"approvedAt,omitempty"`
	ApprovedBy string     `bson:"approved_by,omitempty" json:"approvedBy,omitempty"`

	VerificationCode string     `bson:"verification_code,omitempty" json:"-"`
	CodeExpiry       *time.Time `bson:"code_expiry,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Recalculate refreshes every line total and the invoice totals.
func (inv *Invoice) Recalculate() {
	subtotal := decimal.Zero
	for i := range inv.Items {
		amount := inv.Items[i].amount()
		inv.Items[i].Total = amount.InexactFloat64()
		subtotal = subtotal.Add(amount)
	}

	vat := subtotal.Mul(decimal.NewFromFloat(inv.VatRate)).Div(decimal.NewFromInt(100))

	inv.Subtotal = subtotal.InexactFloat64()
	inv.VatAmount = vat.InexactFloat64()
	inv.Total = subtotal.Add(vat).InexactFloat64()
}

// IsApproved reports whether the client already accepted the document.
func (inv Invoice) IsApproved() bool {
	return inv.Status == StatusApproved
}

// EmailMatches compares a submitted address with the client email, ignoring case
// and surrounding whitespace.
func (inv Invoice) EmailMatches(email string) bool {
	return strings.EqualFold(strings.TrimSpace(email), strings.TrimSpace(inv.ClientEmail))
}

// FileName is the name under which the rendered document is delivered.
func (inv Invoice) FileName() string {
	return inv.InvoiceNumber + ".pdf"
}
