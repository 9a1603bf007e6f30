// Package emails builds the HTML messages sent to clients and to the operator.
package emails

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
)

var (
	verificationTmpl = template.Must(template.New("verification").Parse(`<div style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #0F172A;">Verificatiecode</h2>
  <p>Gebruik onderstaande code om uw document te bekijken:</p>
  <div style="background: #F1F5F9; padding: 20px; text-align: center; border-radius: 8px; margin: 20px 0;">
    <span style="font-size: 32px; font-weight: bold; letter-spacing: 5px; color: #EA580C;">{{.Code}}</span>
  </div>
  <p>Deze code is {{.Minutes}} minuten geldig.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <small style="color: #666;">{{.Company.Name}} - <a href="{{.Company.Website}}" style="color: #EA580C;">{{.Company.Website}}</a></small>
</div>`))

	approvalTmpl = template.Must(template.New("approval").Parse(`<div style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #0F172A;">{{.Kind}} {{.Invoice.InvoiceNumber}} geaccepteerd</h2>
  <p>Beste {{.Invoice.ClientName}},</p>
  <p>Bedankt voor uw akkoord. Het document is digitaal ondertekend door {{.Invoice.ApprovedBy}} op {{.ApprovedAt}}.</p>
  <p>In de bijlage vindt u het ondertekende document ({{.FileName}}).</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <small style="color: #666;">{{.Company.Name}} - {{.Company.Email}} - {{.Company.Phone}}</small>
</div>`))

	summaryTmpl = template.Must(template.New("summary").Parse(`<div style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #0F172A;">Overzicht {{.Date}}</h2>
  <ul>
    <li>In afwachting: {{.Summary.Pending}} ({{printf "%.2f" .Summary.PendingTotal}} EUR)</li>
    <li>Goedgekeurd: {{.Summary.Approved}} ({{printf "%.2f" .Summary.ApprovedTotal}} EUR)</li>
    <li>Afgewezen: {{.Summary.Rejected}}</li>
  </ul>
  {{if .Summary.Stale}}<h3>Langer dan een week openstaand</h3>
  <ul>{{range .Summary.Stale}}
    <li>{{.InvoiceNumber}} - {{.ClientName}} ({{.ClientEmail}})</li>{{end}}
  </ul>{{end}}
  {{if .Summary.Unrecorded}}<h3>Goedgekeurd maar niet in het register</h3>
  <ul>{{range .Summary.Unrecorded}}
    <li>{{.}}</li>{{end}}
  </ul>{{end}}
</div>`))
)

// VerificationSubject is the fixed subject line of verification emails.
func VerificationSubject(company models.CompanyInfo) string {
	return "Uw Verificatiecode - " + company.Name
}

// Verification builds the message carrying a one-time code.
func Verification(company models.CompanyInfo, to, code string, ttl time.Duration) (models.EmailMessage, error) {
	html, err := execute(verificationTmpl, map[string]any{
		"Code":    code,
		"Minutes": int(ttl.Minutes()),
		"Company": company,
	})
	if err != nil {
		return models.EmailMessage{}, err
	}

	return models.EmailMessage{
		To:      to,
		Subject: VerificationSubject(company),
		HTML:    html,
	}, nil
}

// Approval builds the confirmation sent after a client accepted a document.
// The rendered document is attached when available.
func Approval(company models.CompanyInfo, to string, invoice models.Invoice, doc *models.Document) (models.EmailMessage, error) {
	kind := "Factuur"
	if invoice.Type == models.DocumentProforma {
		kind = "Offerte"
	}

	approvedAt := ""
	if invoice.ApprovedAt != nil {
		approvedAt = invoice.ApprovedAt.Format("02-01-2006 15:04")
	}

	html, err := execute(approvalTmpl, map[string]any{
		"Kind":       kind,
		"Invoice":    invoice,
		"ApprovedAt": approvedAt,
		"FileName":   invoice.FileName(),
		"Company":    company,
	})
	if err != nil {
		return models.EmailMessage{}, err
	}

	msg := models.EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("%s %s geaccepteerd - %s", kind, invoice.InvoiceNumber, company.Name),
		HTML:    html,
	}
	if doc != nil {
		msg.Attachments = []models.Attachment{{
			Filename:    doc.FileName,
			Content:     doc.Content,
			ContentType: doc.ContentType,
		}}
	}
	return msg, nil
}

// Summary builds the periodic operator digest.
func Summary(company models.CompanyInfo, summary models.Summary) (models.EmailMessage, error) {
	date := summary.GeneratedAt.Format("02-01-2006")

	html, err := execute(summaryTmpl, map[string]any{
		"Date":    date,
		"Summary": summary,
	})
	if err != nil {
		return models.EmailMessage{}, err
	}

	return models.EmailMessage{
		To:      company.Email,
		Subject: fmt.Sprintf("Overzicht offertes en facturen %s", date),
		HTML:    html,
	}, nil
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
