package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWebhookRequestDecoding(t *testing.T) {
	raw := `{"messages":[{"messageId":"m-1","status":"delivered","contact":{"name":"Ana","phone":"7701"},"dateTime":"2024-05-01T10:00:00Z","authorName":"Admin","chatId":"c-9"}]}`

	var req WebhookRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	require.Len(t, req.Messages, 1)

	e := req.Messages[0]
	require.Equal(t, "m-1", e.MessageID)
	require.Equal(t, "delivered", e.Status)
	require.Equal(t, "Admin", e.AuthorName)
	require.Equal(t, "c-9", e.ChatID)
	require.Equal(t, "Ana", ContactName(e.Contact))
}

func TestWebhookRequestKeepsOpaqueFieldsAsSent(t *testing.T) {
	raw := `{"messages":[{"messageId":"m-1","status":"read","authorName":"Admin","dateTime":1714557600,"chatId":79001234567,"contact":"Ana"}]}`

	var req WebhookRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	require.Len(t, req.Messages, 1)

	e := req.Messages[0]
	require.Equal(t, float64(1714557600), e.DateTime)
	require.Equal(t, float64(79001234567), e.ChatID)

	out, err := json.Marshal(NewRecord(e, time.Unix(0, 0).UTC()))
	require.NoError(t, err)
	require.Contains(t, string(out), `"dateTime":1714557600`)
	require.Contains(t, string(out), `"chatId":79001234567`)
}

func TestNewRecordCarriesEventFields(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	e := StatusEvent{
		MessageID:  "m-2",
		Status:     "read",
		Contact:    map[string]any{"name": "Bo"},
		DateTime:   "2024-05-01T09:59:00Z",
		AuthorName: "Admin",
		ChatID:     "c-1",
	}

	r := NewRecord(e, now)
	require.Equal(t, "m-2", r.MessageID)
	require.Equal(t, "read", r.Status)
	require.Equal(t, e.Contact, r.Contact)
	require.Equal(t, e.DateTime, r.DateTime)
	require.Equal(t, "Admin", r.AuthorName)
	require.Equal(t, "c-1", r.ChatID)
	require.Equal(t, now, r.UpdatedAt)
}

func TestNotificationWireShape(t *testing.T) {
	n := NewNotification(StatusEvent{MessageID: "m-3", Status: "sent", AuthorName: "Admin"})

	data, err := json.Marshal(n)
	require.NoError(t, err)
	require.JSONEq(t, `{"messages":[{"messageId":"m-3","status":"sent"}]}`, string(data))
}

func TestContactName(t *testing.T) {
	require.Equal(t, "", ContactName(nil))
	require.Equal(t, "", ContactName("plain"))
	require.Equal(t, "", ContactName(map[string]any{"name": 42}))
	require.Equal(t, "Cy", ContactName(map[string]any{"name": "Cy"}))
}
