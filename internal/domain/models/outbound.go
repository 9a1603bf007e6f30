package models

import "time"

// EmailMessage is the payload accepted by the email dispatch endpoint.
type EmailMessage struct {
	To          string       `json:"to"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is a file sent along with an email. Content is base64 on the wire.
type Attachment struct {
	Filename    string `json:"filename"`
	Content     []byte `json:"content"`
	ContentType string `json:"contentType,omitempty"`
}

// Document is a rendered artifact stored for an approved record.
type Document struct {
	InvoiceID   string    `bson:"_id" json:"invoiceId"`
	FileName    string    `bson:"file_name" json:"fileName"`
	ContentType string    `bson:"content_type" json:"contentType"`
	Pages       int       `bson:"pages" json:"pages"`
	Content     []byte    `bson:"content" json:"-"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}
