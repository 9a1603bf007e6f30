package models

import "time"

// Summary aggregates the current state of all records for the operator digest.
// Unrecorded lists approved invoice numbers missing from the approval ledger.
type Summary struct {
	GeneratedAt   time.Time      `json:"generatedAt"`
	Pending       int            `json:"pending"`
	Approved      int            `json:"approved"`
	Rejected      int            `json:"rejected"`
	ApprovedTotal float64        `json:"approvedTotal"`
	PendingTotal  float64        `json:"pendingTotal"`
	Stale         []StaleInvoice `json:"stale"`
	Unrecorded    []string       `json:"unrecorded,omitempty"`
}

// StaleInvoice is a pending record that has been waiting longer than the threshold.
type StaleInvoice struct {
	ID            string    `json:"id"`
	InvoiceNumber string    `json:"invoiceNumber"`
	ClientName    string    `json:"clientName"`
	ClientEmail   string    `json:"clientEmail"`
	CreatedAt     time.Time `json:"createdAt"`
}
