package middleware

import (
	"io"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

// LayoutLocal - ключ Locals, под которым маршруты раскладки кладут её id.
const LayoutLocal = "layout"

// Logger пишет строку на запрос с id раскладки, если маршрут его выставил.
func Logger() fiber.Handler {
	return newLogger(os.Stdout)
}

func newLogger(w io.Writer) fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path} layout=${locals:" + LayoutLocal + "}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
		Stream:     w,
	})
}
