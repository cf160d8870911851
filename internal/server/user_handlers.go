// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyStatus handles GET /api/users/me/status
func (s *Server) GetMyStatus(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	status, err := s.userService.GetStatus(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{"status": status})
}

// UpdateMyStatus handles PUT /api/users/me/status
func (s *Server) UpdateMyStatus(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.userService.UpdateStatus(c.Context(), userID, req.Status); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(fiber.Map{"message": "Status updated"})
}

// GetMyPosts handles GET /api/users/me/posts?page=N&pageSize=M
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	p := parsePagination(c)

	page, err := s.postService.GetUserPosts(c.Context(), userID, p.Page, p.PageSize)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(page)
}
