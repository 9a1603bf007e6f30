package mailer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/techsolutionsutrecht/offerte/internal/config"
	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
	"github.com/techsolutionsutrecht/offerte/pkg/clients/mailer"
)

func TestAPIClient_Send(t *testing.T) {
	t.Parallel()
	r := require.New(t)

	var received models.EmailMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.Equal(http.MethodPost, req.Method)
		r.NoError(json.NewDecoder(req.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Email sent successfully"}`))
	}))
	defer srv.Close()

	client := mailer.NewClient(config.MailConfig{APIURL: srv.URL})

	err := client.Send(context.Background(), models.EmailMessage{
		To:      "a@b.com",
		Subject: "Hello",
		HTML:    "<p>hi</p>",
		Attachments: []models.Attachment{
			{Filename: "PI-2026-0001.pdf", Content: []byte("%PDF"), ContentType: "application/pdf"},
		},
	})
	r.NoError(err)

	r.Equal("a@b.com", received.To)
	r.Len(received.Attachments, 1)
	r.Equal([]byte("%PDF"), received.Attachments[0].Content)
}

func TestAPIClient_SendFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Failed to send email","error":"535 auth failed"}`))
	}))
	defer srv.Close()

	client := mailer.NewClient(config.MailConfig{APIURL: srv.URL})

	err := client.Send(context.Background(), models.EmailMessage{To: "a@b.com", Subject: "s", HTML: "h"})
	require.ErrorContains(t, err, "535 auth failed")
}

func TestAPIClient_SendUnreachable(t *testing.T) {
	t.Parallel()

	client := mailer.NewClient(config.MailConfig{APIURL: "http://127.0.0.1:1/api/send-email"})

	err := client.Send(context.Background(), models.EmailMessage{To: "a@b.com", Subject: "s", HTML: "h"})
	require.Error(t, err)
}
