package server

import (
	"github.com/gofiber/fiber/v2"
)

// ServeMedia handles GET /media/*
func (s *Server) ServeMedia(c *fiber.Ctx) error {
	data, contentType, err := s.content.OpenImage(c.UserContext(), c.Params("*"))
	if err != nil {
		return respondServiceError(c, err)
	}

	// Keys are content-addressed, so a key's bytes never change.
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}
