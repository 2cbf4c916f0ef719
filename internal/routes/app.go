package routes

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/config"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/middleware"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// NewApp builds the Fiber app with the global middleware chain. extra
// handlers (for example error tracking) run first.
func NewApp(cfg *config.Config, accessLog bool, extra ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "complaint-desk",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: ErrorHandler,
	})

	for _, h := range extra {
		app.Use(h)
	}
	app.Use(recover.New())
	app.Use(requestid.New())
	if accessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
		}))
	}
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.RequestOrigin())
	return app
}

// ErrorHandler handles errors no handler answered, such as unknown routes and panics.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}
