package handlers

import "github.com/gofiber/fiber/v2"

type ViewerCounter interface {
	ViewerCount() int
}

// HubStatus serves GET /hub/status.
func HubStatus(h ViewerCounter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"viewers": h.ViewerCount()})
	}
}
