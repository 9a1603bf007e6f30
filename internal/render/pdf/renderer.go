// Package pdf renders invoices and proforma quotes as two-page A4 documents:
// a front page with the client, line items and totals, and a continuation page
// with notes, payment terms and the approval stamp.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"

	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
)

const (
	ContentType = "application/pdf"

	pageWidth    = 190.0
	displayDate  = "02-01-2006"
	storageDate  = "2006-01-02"
	paymentDays  = 14
	bottomMargin = 20.0

	// Content must end above this line; nothing may spill onto a third page.
	pageBottom = 297.0 - bottomMargin

	itemHeaderHeight = 8.0
	itemRowHeight    = 7.0
	minItemRowHeight = 4.0
	totalsHeight     = 4 + 7 + 7 + 9
	stampHeight      = 8 + 12
	noticeHeight     = 6.0
	maxNoteLines     = 12
)

// Artifact is a rendered document ready to store or attach.
type Artifact struct {
	FileName    string
	ContentType string
	Pages       int
	Content     []byte
}

// Renderer turns invoices into PDF artifacts.
type Renderer struct {
	company models.CompanyInfo
	now     func() time.Time
}

// NewRenderer builds a renderer that prints the given issuer identity.
func NewRenderer(company models.CompanyInfo) *Renderer {
	return &Renderer{company: company, now: time.Now}
}

// Render produces the document for the invoice, named after its number.
func (r *Renderer) Render(ctx context.Context, invoice models.Invoice) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	if invoice.InvoiceNumber == "" {
		return Artifact{}, fmt.Errorf("render invoice %s: missing invoice number", invoice.ID)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(false, bottomMargin)
	pdf.SetTitle(invoice.InvoiceNumber, true)
	pdf.SetAuthor(r.company.Name, true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	year := r.now().Year()
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(pageWidth, 5, tr(fmt.Sprintf("© %d %s. Pagina %d/{nb}", year, r.company.Name, pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AliasNbPages("")

	overflow := r.frontPage(pdf, tr, invoice)
	r.continuationPage(pdf, tr, invoice, overflow)

	if err := pdf.Error(); err != nil {
		return Artifact{}, fmt.Errorf("render invoice %s: %w", invoice.InvoiceNumber, err)
	}

	pages := pdf.PageCount()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Artifact{}, fmt.Errorf("write pdf %s: %w", invoice.InvoiceNumber, err)
	}

	return Artifact{
		FileName:    invoice.FileName(),
		ContentType: ContentType,
		Pages:       pages,
		Content:     buf.Bytes(),
	}, nil
}

func (r *Renderer) header(pdf *gofpdf.Fpdf, tr func(string) string) {
	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(15, 23, 42)
	pdf.CellFormat(95, 10, tr(r.company.Name), "", 0, "L", false, 0, "")

	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(90, 90, 90)
	lines := []string{
		r.company.Address,
		r.company.Phone,
		r.company.Email,
		"KVK: " + r.company.Kvk,
		"BTW-id: " + r.company.VatID,
		r.company.Website,
	}
	x, y := pdf.GetXY()
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		pdf.SetXY(x, y+float64(i)*4)
		pdf.CellFormat(95, 4, tr(line), "", 0, "R", false, 0, "")
	}

	pdf.SetY(y + float64(len(lines))*4 + 2)
	pdf.SetDrawColor(234, 88, 12)
	pdf.SetLineWidth(0.8)
	pdf.Line(10, pdf.GetY(), 10+pageWidth, pdf.GetY())
	pdf.SetLineWidth(0.2)
	pdf.SetDrawColor(0, 0, 0)
	pdf.Ln(6)
	pdf.SetTextColor(0, 0, 0)
}

// frontPage lays out the first page and returns the line items that did not fit on it.
func (r *Renderer) frontPage(pdf *gofpdf.Fpdf, tr func(string) string, invoice models.Invoice) []models.LineItem {
	pdf.AddPage()
	r.header(pdf, tr)

	isProforma := invoice.Type == models.DocumentProforma
	numberLabel, dueLabel := "Factuurnummer", "Vervaldatum"
	if isProforma {
		numberLabel, dueLabel = "Offertenummer", "Geldig tot"
	}

	// Title bar
	pdf.SetFont("Arial", "B", 22)
	pdf.CellFormat(95, 10, invoice.Type.Title(), "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	y := pdf.GetY()
	pdf.CellFormat(95, 5, tr(fmt.Sprintf("%s: %s", numberLabel, invoice.InvoiceNumber)), "", 2, "R", false, 0, "")
	pdf.CellFormat(95, 5, tr("Datum: "+formatDate(invoice.Date)), "", 2, "R", false, 0, "")
	pdf.CellFormat(95, 5, tr(fmt.Sprintf("%s: %s", dueLabel, formatDate(invoice.DueDate))), "", 2, "R", false, 0, "")
	pdf.SetXY(10, y+18)

	// Client and details blocks
	pdf.SetFillColor(241, 245, 249)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(95, 7, "Aan", "", 0, "L", true, 0, "")
	pdf.CellFormat(95, 7, "Details", "", 1, "L", true, 0, "")

	clientLines := []string{invoice.ClientName, invoice.ClientCompany, invoice.ClientAddress, invoice.ClientEmail}
	if invoice.ClientKvk != "" {
		clientLines = append(clientLines, "KVK: "+invoice.ClientKvk)
	}
	detailLines := []string{
		"Referentie: " + reference(invoice.ID),
		"Type: " + typeLabel(invoice.Type),
		"Status: " + statusLabel(invoice.Status),
	}

	pdf.SetFont("Arial", "", 10)
	rows := max(len(clientLines), len(detailLines))
	for i := range rows {
		left, right := "", ""
		if i < len(clientLines) {
			left = clientLines[i]
		}
		if i < len(detailLines) {
			right = detailLines[i]
		}
		pdf.CellFormat(95, 6, tr(left), "", 0, "L", false, 0, "")
		pdf.CellFormat(95, 6, tr(right), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Line items
	reserved := totalsHeight + noticeHeight
	if invoice.IsApproved() {
		reserved += stampHeight
	}
	overflow := itemTable(pdf, tr, invoice.Items, pageBottom-pdf.GetY()-reserved)
	if len(overflow) > 0 {
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(90, 90, 90)
		pdf.CellFormat(pageWidth, noticeHeight-2, tr(fmt.Sprintf("Vervolg: nog %d regels op pagina 2", len(overflow))), "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Arial", "", 10)
	}
	pdf.Ln(4)

	// Totals
	pdf.SetX(10 + pageWidth - 80)
	pdf.CellFormat(45, 7, "Subtotaal", "", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, tr(FormatEuro(invoice.Subtotal)), "", 1, "R", false, 0, "")
	pdf.SetX(10 + pageWidth - 80)
	pdf.CellFormat(45, 7, fmt.Sprintf("BTW (%s%%)", formatQuantity(invoice.VatRate)), "", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, tr(FormatEuro(invoice.VatAmount)), "", 1, "R", false, 0, "")
	pdf.SetX(10 + pageWidth - 80)
	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(234, 88, 12)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(45, 9, "TOTAAL", "", 0, "L", true, 0, "")
	pdf.CellFormat(35, 9, tr(FormatEuro(invoice.Total)), "", 1, "R", true, 0, "")
	pdf.SetTextColor(0, 0, 0)

	if invoice.IsApproved() {
		stamp := "BETAALD"
		if isProforma {
			stamp = "GEACCEPTEERD"
		}
		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 16)
		pdf.SetTextColor(22, 163, 74)
		pdf.SetDrawColor(22, 163, 74)
		pdf.CellFormat(70, 12, stamp, "1", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetDrawColor(0, 0, 0)
	}
	return overflow
}

func (r *Renderer) continuationPage(pdf *gofpdf.Fpdf, tr func(string) string, invoice models.Invoice, overflow []models.LineItem) {
	pdf.AddPage()
	r.header(pdf, tr)

	isProforma := invoice.Type == models.DocumentProforma
	numberWord := "factuurnummer"
	if isProforma {
		numberWord = "offertenummer"
	}

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(pageWidth, 10, "Vervolg specificaties", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	terms := fmt.Sprintf("Gelieve het totaalbedrag over te maken binnen %d dagen op rekeningnummer %s t.n.v. %s, onder vermelding van het %s %s.",
		paymentDays, r.company.IBAN, r.company.Name, numberWord, invoice.InvoiceNumber)

	pdf.SetFont("Arial", "", 10)
	noteLines := wrap(pdf, tr(invoice.Notes), maxNoteLines)
	termLines := wrap(pdf, tr(terms), 0)

	if len(overflow) > 0 {
		// notes header, notes, terms and the signature block
		below := 7 + float64(len(noteLines))*5 + 2 + float64(len(termLines))*5 + 8 + 7 + 4*6
		rest := itemTable(pdf, tr, overflow, pageBottom-pdf.GetY()-below-noticeHeight-4)
		if len(rest) > 0 {
			pdf.SetFont("Arial", "I", 8)
			pdf.SetTextColor(90, 90, 90)
			pdf.CellFormat(pageWidth, noticeHeight-2, tr(fmt.Sprintf("… en nog %d regels, opgenomen in het totaal op pagina 1", len(rest))), "", 1, "L", false, 0, "")
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.Ln(4)
	}

	pdf.SetFillColor(241, 245, 249)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(pageWidth, 7, tr("Notities & Voorwaarden"), "", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	if len(noteLines) > 0 {
		for _, line := range noteLines {
			pdf.CellFormat(pageWidth, 5, line, "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}
	for _, line := range termLines {
		pdf.CellFormat(pageWidth, 5, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(95, 7, "Voor Akkoord (Klant)", "B", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, tr("Voor Akkoord ("+r.company.Name+")"), "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)

	if invoice.IsApproved() {
		approvedAt := ""
		if invoice.ApprovedAt != nil {
			approvedAt = invoice.ApprovedAt.Format(displayDate + " 15:04")
		}
		pdf.SetTextColor(22, 163, 74)
		pdf.CellFormat(95, 6, "Digitaal Ondertekend", "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(95, 6, tr(r.company.Name), "", 1, "L", false, 0, "")
		pdf.CellFormat(95, 6, tr(invoice.ApprovedBy), "", 1, "L", false, 0, "")
		pdf.CellFormat(95, 6, approvedAt, "", 1, "L", false, 0, "")
	} else {
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(95, 6, "Nog niet ondertekend", "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(95, 6, tr(r.company.Name), "", 1, "L", false, 0, "")
	}
}

// itemTable draws the item header and as many rows as fit in height, shrinking
// rows down to minItemRowHeight first. It returns the rows left undrawn.
func itemTable(pdf *gofpdf.Fpdf, tr func(string) string, items []models.LineItem, height float64) []models.LineItem {
	body := height - itemHeaderHeight
	if body < minItemRowHeight {
		return items
	}

	rowHeight := itemRowHeight
	if need := float64(len(items)) * rowHeight; need > body {
		rowHeight = math.Max(body/float64(len(items)), minItemRowHeight)
	}
	fit := min(len(items), int(body/rowHeight+1e-9))
	fontSize := math.Min(10, math.Max(6, rowHeight*10/itemRowHeight))

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(15, 23, 42)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(100, itemHeaderHeight, "Omschrijving", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, itemHeaderHeight, "Aantal", "1", 0, "C", true, 0, "")
	pdf.CellFormat(32, itemHeaderHeight, "Prijs", "1", 0, "R", true, 0, "")
	pdf.CellFormat(33, itemHeaderHeight, "Totaal", "1", 1, "R", true, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.SetFont("Arial", "", fontSize)
	pdf.SetFillColor(248, 250, 252)
	for i, item := range items[:fit] {
		fill := i%2 == 0
		pdf.CellFormat(100, rowHeight, tr(truncate(item.Description, 60)), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(25, rowHeight, formatQuantity(item.Quantity), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(32, rowHeight, tr(FormatEuro(item.UnitPrice)), "1", 0, "R", fill, 0, "")
		pdf.CellFormat(33, rowHeight, tr(FormatEuro(item.Total)), "1", 1, "R", fill, 0, "")
	}
	pdf.SetFont("Arial", "", 10)
	return items[fit:]
}

// wrap splits text into lines of pageWidth at the current font. A positive
// limit caps the line count, marking the cut with an ellipsis.
func wrap(pdf *gofpdf.Fpdf, text string, limit int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var lines []string
	for _, raw := range pdf.SplitLines([]byte(text), pageWidth) {
		lines = append(lines, string(raw))
	}
	if limit > 0 && len(lines) > limit {
		lines = lines[:limit]
		lines[limit-1] = strings.TrimRight(lines[limit-1], " ") + "..."
	}
	return lines
}

// FormatEuro prints an amount the Dutch way, e.g. "€ 1.234,56".
func FormatEuro(amount float64) string {
	fixed := decimal.NewFromFloat(amount).StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	whole, cents, _ := strings.Cut(fixed, ".")
	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}

	return fmt.Sprintf("€ %s%s,%s", sign, grouped.String(), cents)
}

func formatQuantity(q float64) string {
	return decimal.NewFromFloat(q).String()
}

func formatDate(value string) string {
	t, err := time.Parse(storageDate, value)
	if err != nil {
		return value
	}
	return t.Format(displayDate)
}

func reference(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

func typeLabel(t models.DocumentType) string {
	if t == models.DocumentProforma {
		return "Proforma"
	}
	return "Standaard"
}

func statusLabel(s models.Status) string {
	switch s {
	case models.StatusApproved:
		return "GOEDGEKEURD"
	case models.StatusRejected:
		return "AFGEWEZEN"
	default:
		return "OPENSTAAND"
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
