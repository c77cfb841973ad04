package middleware

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// Config carries the dependencies for the shared middleware chain.
type Config struct {
	Logger *zerolog.Logger
}

// Register installs the shared middleware chain: panic recovery first,
// then correlation IDs so the request logger can pick them up, then
// structured request logging and CORS.
func Register(app *fiber.App, cfg Config) {
	log := zerolog.New(io.Discard)
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	app.Use(recover.New())
	app.Use(CorrelationID())
	app.Use(Observability(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}
