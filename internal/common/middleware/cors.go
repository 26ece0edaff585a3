package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

// CORS открывает API редактора браузерному клиенту: только используемые
// методы, JSON тело и заголовки выгрузки.
func CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodDelete, fiber.MethodOptions},
		AllowHeaders:  []string{fiber.HeaderContentType, fiber.HeaderAuthorization},
		ExposeHeaders: []string{fiber.HeaderContentDisposition, RevisionHeader},
	})
}

// RevisionHeader несёт счётчик изменений раскладки в ответе GET /layouts/:id.
const RevisionHeader = "X-Layout-Revision"
