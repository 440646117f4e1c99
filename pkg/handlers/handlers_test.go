package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"relay/pkg/models"
	"relay/pkg/repository"
	"relay/pkg/services"
)

type stubWebhook struct {
	got    []models.StatusEvent
	called bool
	err    error
}

func (s *stubWebhook) Ingest(_ context.Context, events []models.StatusEvent) error {
	s.called = true
	s.got = events
	if s.err != nil {
		return s.err
	}
	if len(events) == 0 {
		return services.ErrNoMessages
	}
	return nil
}

type stubStatuses struct {
	records []models.Record
	err     error
}

func (s *stubStatuses) List(context.Context) ([]models.Record, error) {
	return s.records, s.err
}

func (s *stubStatuses) Get(_ context.Context, id string) (*models.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, r := range s.records {
		if r.MessageID == id {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

type countViewers int

func (n countViewers) ViewerCount() int { return int(n) }

func do(t *testing.T, app *fiber.App, method, path, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func webhookApp(svc services.WebhookService) *fiber.App {
	app := fiber.New()
	app.Post("/webhook", NewWebhook(svc).Receive)
	return app
}

func TestWebhookReceive(t *testing.T) {
	valid := `{"messages":[{"messageId":"m-1","status":"read","authorName":"Admin","contact":{"name":"Ana"},"dateTime":"2024-05-01","chatId":"c"}]}`

	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
		wantBody   string
		wantCalled bool
	}{
		{name: "accepted", body: valid, wantStatus: http.StatusOK, wantCalled: true},
		{name: "missing messages", body: `{}`, wantStatus: http.StatusBadRequest, wantBody: "No messages in request", wantCalled: true},
		{name: "null messages", body: `{"messages":null}`, wantStatus: http.StatusBadRequest, wantBody: "No messages in request", wantCalled: true},
		{name: "empty messages", body: `{"messages":[]}`, wantStatus: http.StatusBadRequest, wantBody: "No messages in request", wantCalled: true},
		{name: "no body", body: "", wantStatus: http.StatusBadRequest, wantBody: "No messages in request", wantCalled: true},
		{name: "malformed", body: `{"messages":`, wantStatus: http.StatusBadRequest, wantBody: "Malformed request body"},
		{name: "storage failure", body: valid, svcErr: fmt.Errorf("%w: boom", services.ErrStorage), wantStatus: http.StatusInternalServerError, wantCalled: true},
		{name: "unexpected failure", body: valid, svcErr: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCalled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubWebhook{err: tt.svcErr}
			status, body := do(t, webhookApp(svc), http.MethodPost, "/webhook", tt.body)

			require.Equal(t, tt.wantStatus, status)
			require.Equal(t, tt.wantBody, body)
			require.Equal(t, tt.wantCalled, svc.called)
		})
	}
}

func TestWebhookPassesEventsInOrder(t *testing.T) {
	svc := &stubWebhook{}
	body := `{"messages":[{"messageId":"a","authorName":"Admin"},{"messageId":"b","authorName":"x"}]}`

	status, _ := do(t, webhookApp(svc), http.MethodPost, "/webhook", body)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, svc.got, 2)
	require.Equal(t, "a", svc.got[0].MessageID)
	require.Equal(t, "b", svc.got[1].MessageID)
}

func TestWebhookAcceptsNonStringOpaqueFields(t *testing.T) {
	svc := &stubWebhook{}
	body := `{"messages":[
		{"messageId":"a","status":"read","authorName":"Admin","dateTime":1714557600,"chatId":79001234567},
		{"messageId":"b","status":"sent","authorName":"Bot","dateTime":{"ts":1},"chatId":[1,2]}
	]}`

	status, _ := do(t, webhookApp(svc), http.MethodPost, "/webhook", body)
	require.Equal(t, http.StatusOK, status)
	require.True(t, svc.called)
	require.Len(t, svc.got, 2)
	require.Equal(t, float64(1714557600), svc.got[0].DateTime)
	require.Equal(t, float64(79001234567), svc.got[0].ChatID)
}

func statusesApp(svc services.StatusService) *fiber.App {
	h := NewStatuses(svc)
	app := fiber.New()
	app.Get("/statuses", h.List)
	app.Get("/statuses/:messageId", h.Get)
	return app
}

func TestStatusesList(t *testing.T) {
	svc := &stubStatuses{records: []models.Record{{MessageID: "m-1", Status: "read"}}}

	status, body := do(t, statusesApp(svc), http.MethodGet, "/statuses", "")
	require.Equal(t, http.StatusOK, status)

	var got []models.Record
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	require.Len(t, got, 1)
	require.Equal(t, "read", got[0].Status)

	svc.err = errors.New("down")
	status, _ = do(t, statusesApp(svc), http.MethodGet, "/statuses", "")
	require.Equal(t, http.StatusInternalServerError, status)
}

func TestStatusesGet(t *testing.T) {
	svc := &stubStatuses{records: []models.Record{{MessageID: "m-1", Status: "failed"}}}
	app := statusesApp(svc)

	status, body := do(t, app, http.MethodGet, "/statuses/m-1", "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, `"failed"`)

	status, _ = do(t, app, http.MethodGet, "/statuses/unknown", "")
	require.Equal(t, http.StatusNotFound, status)
}

func TestHubStatus(t *testing.T) {
	app := fiber.New()
	app.Get("/hub/status", HubStatus(countViewers(3)))

	status, body := do(t, app, http.MethodGet, "/hub/status", "")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"viewers":3}`, body)
}
