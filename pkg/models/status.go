package models

import "time"

// StatusEvent is one delivery update reported by the messaging gateway.
// Contact, DateTime and ChatID are passed through as received.
type StatusEvent struct {
	MessageID  string `json:"messageId"`
	Status     string `json:"status"`
	Contact    any    `json:"contact"`
	DateTime   any    `json:"dateTime"`
	AuthorName string `json:"authorName"`
	ChatID     any    `json:"chatId"`
}

// WebhookRequest is the body the gateway posts to /webhook.
type WebhookRequest struct {
	Messages []StatusEvent `json:"messages"`
}

// Record is the persisted form of a StatusEvent, keyed by MessageID.
type Record struct {
	MessageID  string    `json:"messageId"`
	Status     string    `json:"status"`
	Contact    any       `json:"contact"`
	DateTime   any       `json:"dateTime"`
	AuthorName string    `json:"authorName"`
	ChatID     any       `json:"chatId"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func NewRecord(e StatusEvent, now time.Time) Record {
	return Record{
		MessageID:  e.MessageID,
		Status:     e.Status,
		Contact:    e.Contact,
		DateTime:   e.DateTime,
		AuthorName: e.AuthorName,
		ChatID:     e.ChatID,
		UpdatedAt:  now,
	}
}

type StatusUpdate struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
}

// Notification is the payload published on the event bus and pushed to viewers.
type Notification struct {
	Messages []StatusUpdate `json:"messages"`
}

func NewNotification(e StatusEvent) Notification {
	return Notification{
		Messages: []StatusUpdate{{MessageID: e.MessageID, Status: e.Status}},
	}
}

// ContactName extracts contact.name when the contact is a JSON object.
func ContactName(contact any) string {
	m, ok := contact.(map[string]any)
	if !ok {
		return ""
	}
	name, _ := m["name"].(string)
	return name
}
