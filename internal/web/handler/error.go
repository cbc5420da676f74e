package handler

import (
	"github.com/gofiber/fiber/v2"
)

// RenderError renders the error page with status.
func RenderError(c *fiber.Ctx, status int, title, message string) error {
	return c.Status(status).Render(TemplateError, fiber.Map{
		"Title":   title,
		"Status":  status,
		"Message": message,
	}, BaseLayout)
}

// ErrorHandler replaces fiber's plain text errors with the error page.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	title := "Internal Server Error"
	message := "Something went wrong. Please try again later."

	if e, ok := err.(*fiber.Error); ok { //nolint:errorlint
		status = e.Code
		if status == fiber.StatusNotFound {
			title = "Page Not Found"
			message = "The page you're looking for doesn't exist."
		} else if status < fiber.StatusInternalServerError {
			title = "Request Error"
			message = e.Message
		}
	}

	return RenderError(c, status, title, message)
}
