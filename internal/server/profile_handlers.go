package server

import (
	"net/url"

	"snapshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/profile
// @Summary Own profile
// @Tags profiles
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.ProfileView
// @Router /profile [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	view, err := s.aggregator.BuildProfileView(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(view)
}

// GetProfileByUsername handles GET /api/profiles/:username
// @Summary Profile by username
// @Tags profiles
// @Produce json
// @Param username path string true "Exact username"
// @Success 200 {object} models.ProfileView
// @Failure 404 {object} models.ErrorResponse
// @Router /profiles/{username} [get]
func (s *Server) GetProfileByUsername(c *fiber.Ctx) error {
	username, err := url.PathUnescape(c.Params("username"))
	if err != nil {
		username = c.Params("username")
	}
	view, err := s.aggregator.BuildProfileViewByUsername(c.UserContext(), username)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(view)
}

// UploadProfileImage handles POST /api/profile/image
// @Summary Upload a profile image
// @Description The newest upload becomes the effective profile image
// @Tags profiles
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Param photo formData file true "Image (jpg, jpeg, png, gif, webp)"
// @Success 201 {object} object{image_path=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /profile/image [post]
func (s *Server) UploadProfileImage(c *fiber.Ctx) error {
	img, err := readUpload(c, "photo")
	if err != nil {
		return respondServiceError(c, err)
	}

	key, err := s.content.UploadProfileImage(c.UserContext(), currentUserID(c), img)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"image_path": service.MediaURL(key),
	})
}
