package handlers

import (
	"errors"

	"relay/pkg/repository"
	"relay/pkg/services"

	"github.com/gofiber/fiber/v2"
)

type StatusesHandler struct {
	service services.StatusService
}

func NewStatuses(service services.StatusService) *StatusesHandler {
	return &StatusesHandler{service: service}
}

// GET /statuses
func (h *StatusesHandler) List(c *fiber.Ctx) error {
	records, err := h.service.List(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read statuses"})
	}
	return c.JSON(records)
}

// GET /statuses/:messageId
func (h *StatusesHandler) Get(c *fiber.Ctx) error {
	rec, err := h.service.Get(c.UserContext(), c.Params("messageId"))
	if errors.Is(err, repository.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "status not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read status"})
	}
	return c.JSON(rec)
}
