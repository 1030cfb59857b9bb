package server

import (
	"io"

	"snapshare/internal/middleware"
	"snapshare/internal/models"
	"snapshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// mapServiceError picks the HTTP status for an error returned by a service.
func mapServiceError(err error) int {
	return models.StatusFor(err)
}

// respondServiceError logs server-side failures with their cause and writes the
// client-safe error body.
func respondServiceError(c *fiber.Ctx, err error) error {
	status := mapServiceError(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"path", c.Path(), "error", err)
	}
	return models.RespondWithError(c, status, err)
}

func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

func currentSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals("sessionID").(string)
	return sid
}

// readUpload loads the multipart file stored under field.
func readUpload(c *fiber.Ctx, field string) (service.ImageUpload, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return service.ImageUpload{}, models.NewFieldValidationError(field, "No file uploaded")
	}

	src, err := file.Open()
	if err != nil {
		return service.ImageUpload{}, models.NewFieldValidationError(field, "Unable to read uploaded file")
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return service.ImageUpload{}, models.NewFieldValidationError(field, "Unable to read uploaded file")
	}
	return service.ImageUpload{Filename: file.Filename, Content: content}, nil
}
