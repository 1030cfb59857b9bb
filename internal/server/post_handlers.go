package server

import (
	"snapshare/internal/models"
	"snapshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Param photo formData file true "Image (jpg, jpeg, png, gif, webp)"
// @Param title formData string true "Unique title"
// @Param description formData string true "Description"
// @Success 201 {object} models.PostCard
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	img, err := readUpload(c, "photo")
	if err != nil {
		return respondServiceError(c, err)
	}

	post, err := s.content.CreatePost(c.UserContext(), service.CreatePostInput{
		AccountID:   currentUserID(c),
		Image:       img,
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.PostCard{
		ID:          post.ID,
		Title:       post.Title,
		Description: post.Description,
		ImagePath:   service.MediaURL(post.ImagePath),
	})
}

// GetFeed handles GET /api/feed
// @Summary Global feed
// @Description Every post, newest first
// @Tags feed
// @Produce json
// @Success 200 {object} models.FeedView
// @Router /feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	feed, err := s.aggregator.BuildFeed(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(feed)
}

// SelectPost handles POST /api/feed/select
// @Summary Open a post by title
// @Description Records the view and redirects to the open post
// @Tags feed
// @Security BearerAuth
// @Accept json
// @Param request body object{title=string} true "Post title"
// @Success 303
// @Failure 404 {object} models.ErrorResponse
// @Router /feed/select [post]
func (s *Server) SelectPost(c *fiber.Ctx) error {
	var req struct {
		Title string `json:"title" form:"title"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if _, err := s.navigation.SelectPost(c.UserContext(), currentSessionID(c), req.Title); err != nil {
		return respondServiceError(c, err)
	}
	return c.Redirect("/api/posts/current", fiber.StatusSeeOther)
}

// GetCurrentPost handles GET /api/posts/current
// @Summary The open post with its comments
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.PostDetailView
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/current [get]
func (s *Server) GetCurrentPost(c *fiber.Ctx) error {
	view, err := s.navigation.CurrentPost(c.UserContext(), currentSessionID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(view)
}

// ClosePost handles DELETE /api/posts/current
// @Summary Close the open post
// @Tags posts
// @Security BearerAuth
// @Success 204
// @Router /posts/current [delete]
func (s *Server) ClosePost(c *fiber.Ctx) error {
	if err := s.navigation.Close(c.UserContext(), currentSessionID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateComment handles POST /api/posts/current/comments
// @Summary Comment on the open post
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{text=string} true "Comment"
// @Success 201 {object} models.Comment
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/current/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text" form:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.navigation.AddComment(c.UserContext(), currentSessionID(c), currentUserID(c), req.Text)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
