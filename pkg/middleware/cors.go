package middleware

import (
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const DefaultCORSOrigins = "http://localhost:3000"

func CORSConfig(origins string) cors.Config {
	if origins == "" {
		origins = DefaultCORSOrigins
	}
	return cors.Config{
		AllowOrigins: origins,
		AllowMethods: "POST,GET,OPTIONS",
		AllowHeaders: "Content-Type,Cache-Control,Pragma",
	}
}
