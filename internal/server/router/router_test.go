package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/techsolutionsutrecht/offerte/internal/auth"
	"github.com/techsolutionsutrecht/offerte/internal/config"
	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
	"github.com/techsolutionsutrecht/offerte/internal/render/pdf"
	"github.com/techsolutionsutrecht/offerte/internal/repository/memory"
	"github.com/techsolutionsutrecht/offerte/internal/server/handlers"
	"github.com/techsolutionsutrecht/offerte/internal/server/middleware"
	"github.com/techsolutionsutrecht/offerte/internal/server/router"
	"github.com/techsolutionsutrecht/offerte/internal/service/approval"
	"github.com/techsolutionsutrecht/offerte/internal/service/records"
	"github.com/techsolutionsutrecht/offerte/internal/service/verification"
)

type outbox struct {
	mu   sync.Mutex
	sent []models.EmailMessage
}

func (o *outbox) Send(_ context.Context, msg models.EmailMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sent)
}

type smtpStub struct{}

func (smtpStub) Send(models.EmailMessage) error { return nil }

type app struct {
	engine *gin.Engine
	store  *memory.Repository
	outbox *outbox
}

func newApp(t *testing.T) *app {
	t.Helper()

	company := models.CompanyInfo{Name: "TechSolutionsUtrecht", Email: "info@example.com", IBAN: "NL61 INGB 0116 4234 63"}
	store := memory.NewRepository()
	box := &outbox{}

	hash, err := auth.HashPassword("letmein")
	require.NoError(t, err)
	authenticator := auth.NewAuthenticator(config.AdminConfig{
		Email:           "owner@example.com",
		PasswordHash:    hash,
		JWTSecret:       "0123456789abcdef0123456789abcdef",
		ExpirationHours: 1,
		Issuer:          "offerte",
	})

	engine := verification.NewService(store, box, config.VerificationConfig{CodeTTL: 10 * time.Minute}, company, nil)
	flow := verification.NewFlow(engine, verification.NewSessionManager(verification.DefaultSessionTTL), time.Minute)
	recordSvc := records.NewService(store, "https://offerte.example.com", nil)
	approvalSvc := approval.NewService(store, pdf.NewRenderer(company), box, nil, company, nil)

	r := router.New(router.Handlers{
		Email:  handlers.NewEmailHandler(smtpStub{}, nil),
		Auth:   handlers.NewAuthHandler(authenticator, nil),
		Admin:  handlers.NewAdminHandler(recordSvc, flow, nil),
		Viewer: handlers.NewViewerHandler(store, flow, approvalSvc, nil),
	}, authenticator, nil)

	return &app{engine: r, store: store, outbox: box}
}

func (a *app) do(t *testing.T, method, path, session, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(middleware.ViewerSessionHeader, session)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (a *app) login(t *testing.T) string {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/auth/login", "", "", map[string]string{"email": "owner@example.com", "password": "letmein"})
	require.Equal(t, http.StatusOK, rec.Code)
	return decode(t, rec)["token"].(string)
}

func (a *app) createInvoice(t *testing.T, token string) string {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/admin/invoices", "", token, map[string]any{
		"type":        "proforma",
		"dueDate":     "2026-06-01",
		"clientName":  "Anna de Vries",
		"clientEmail": "anna@example.nl",
		"vatRate":     21,
		"items":       []map[string]any{{"description": "Website", "quantity": 1, "unitPrice": 750}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	id := body["id"].(string)
	require.Equal(t, "https://offerte.example.com/#/invoice/"+id, body["shareLink"])
	return id
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	rec := a.do(t, http.MethodGet, "/healthz", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRequiresToken(t *testing.T) {
	t.Parallel()

	a := newApp(t)

	rec := a.do(t, http.MethodGet, "/api/admin/invoices", "", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/admin/invoices", "", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/auth/login", "", "", map[string]string{"email": "owner@example.com", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerificationAndApproval(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	token := a.login(t)
	id := a.createInvoice(t, token)
	base := "/api/invoices/" + id

	rec := a.do(t, http.MethodGet, base, "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	session := rec.Header().Get(middleware.ViewerSessionHeader)
	require.NotEmpty(t, session)
	require.Equal(t, "awaiting_email", decode(t, rec)["step"])
	require.NotContains(t, rec.Body.String(), "anna@example.nl")

	rec = a.do(t, http.MethodPost, base+"/verification/email", session, "", map[string]string{"email": "someone@else.nl"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Zero(t, a.outbox.count())

	rec = a.do(t, http.MethodPost, base+"/verification/email", session, "", map[string]string{"email": "ANNA@example.nl"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "awaiting_code", decode(t, rec)["step"])
	require.Equal(t, 1, a.outbox.count())

	rec = a.do(t, http.MethodPost, base+"/verification/resend", session, "", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = a.do(t, http.MethodGet, base+"/document", session, "", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPost, base+"/approve", session, "", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	stored, err := a.store.Get(context.Background(), id)
	require.NoError(t, err)
	code := stored.VerificationCode

	wrong := "000000"
	if code == wrong {
		wrong = "999999"
	}
	rec = a.do(t, http.MethodPost, base+"/verification/code", session, "", map[string]string{"code": wrong})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = a.do(t, http.MethodPost, base+"/verification/code", session, "", map[string]any{"digits": strings.Split(code, "")})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "verified", decode(t, rec)["step"])

	rec = a.do(t, http.MethodGet, base+"/document", session, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "anna@example.nl", decode(t, rec)["clientEmail"])
	require.NotContains(t, rec.Body.String(), code)

	rec = a.do(t, http.MethodGet, base+"/pdf", session, "", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, http.MethodPost, base+"/approve", session, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	outcome := decode(t, rec)
	require.Equal(t, false, outcome["alreadyApproved"])
	require.Equal(t, true, outcome["rendered"])

	rec = a.do(t, http.MethodPost, base+"/approve", session, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decode(t, rec)["alreadyApproved"])

	rec = a.do(t, http.MethodGet, base+"/pdf", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, pdf.ContentType, rec.Header().Get("Content-Type"))
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	// A fresh viewer sees the approved record directly.
	rec = a.do(t, http.MethodGet, base, "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "approved", body["status"])
	require.Equal(t, "anna@example.nl", body["approvedBy"])
}

func TestDeletedInvoiceIsNotFound(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	token := a.login(t)
	id := a.createInvoice(t, token)

	rec := a.do(t, http.MethodDelete, "/api/admin/invoices/"+id, "", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/invoices/"+id, "", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/invoices/"+id+"/verification/email", "", "", map[string]string{"email": "anna@example.nl"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/admin/invoices/"+id, "", token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminValidation(t *testing.T) {
	t.Parallel()

	a := newApp(t)
	token := a.login(t)

	rec := a.do(t, http.MethodPost, "/api/admin/invoices", "", token, map[string]any{"type": "proforma"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotEmpty(t, decode(t, rec)["problems"])
}
