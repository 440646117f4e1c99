package server

import (
	"relay/pkg/handlers"
	"relay/pkg/hub"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type Routes struct {
	Webhook  *handlers.WebhookHandler
	Statuses *handlers.StatusesHandler
	Hub      *hub.Hub
}

func (r Routes) Register(app *fiber.App) {
	app.Post("/webhook", r.Webhook.Receive)

	app.Get("/statuses", r.Statuses.List)
	app.Get("/statuses/:messageId", r.Statuses.Get)

	app.Get("/hub/status", handlers.HubStatus(r.Hub))

	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		r.Hub.HandleConn(c)
	}))
}
