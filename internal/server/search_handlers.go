package server

import (
	"snapshare/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Search handles POST /api/search
// @Summary Find an account by exact username
// @Description Every query is logged. A match redirects to the profile.
// @Tags search
// @Accept json
// @Param request body object{query=string} true "Username"
// @Success 303
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /search [post]
func (s *Server) Search(c *fiber.Ctx) error {
	var req struct {
		Query string `json:"query" form:"query"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.aggregator.Search(c.UserContext(), req.Query)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Redirect(result.Redirect, fiber.StatusSeeOther)
}
