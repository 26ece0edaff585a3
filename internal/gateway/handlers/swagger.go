package handlers

import (
	"os"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Swagger Handlers
// ============================================================

// OpenAPIPath указывает на OpenAPI документ API редактора.
const OpenAPIPath = "docs/editor.openapi.yaml"

// OpenAPIDocument отдаёт OpenAPI YAML.
func OpenAPIDocument(c fiber.Ctx) error {
	data, err := os.ReadFile(OpenAPIPath)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "openapi document not found"})
	}
	c.Type("yaml")
	return c.Send(data)
}

// SwaggerUI отдаёт страницу Swagger UI, читающую документ из /docs/openapi.yaml.
func SwaggerUI(c fiber.Ctx) error {
	page := `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>Canvas Editor API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({
      url: '/docs/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
    });
  };
</script>
</body>
</html>`

	c.Type("html")
	return c.SendString(page)
}
