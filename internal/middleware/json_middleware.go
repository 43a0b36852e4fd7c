package middleware

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ValidateJSON rejects requests whose declared-JSON body does not parse,
// before any route handler sees them.
func ValidateJSON() fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := c.Body()
		if len(body) > 0 &&
			strings.Contains(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) &&
			!json.Valid(body) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid JSON in request body",
			})
		}
		return c.Next()
	}
}
