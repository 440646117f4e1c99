package handlers

import (
	"encoding/json"
	"errors"

	"relay/pkg/models"
	"relay/pkg/services"

	"github.com/gofiber/fiber/v2"
)

const noMessagesBody = "No messages in request"

type WebhookHandler struct {
	service services.WebhookService
}

func NewWebhook(service services.WebhookService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// POST /webhook
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	var req models.WebhookRequest
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("Malformed request body")
		}
	}

	err := h.service.Ingest(c.UserContext(), req.Messages)
	switch {
	case errors.Is(err, services.ErrNoMessages):
		return c.Status(fiber.StatusBadRequest).SendString(noMessagesBody)
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).Send(nil)
	}
	return c.Status(fiber.StatusOK).Send(nil)
}
