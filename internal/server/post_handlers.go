// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts (multipart form: title, content, image)
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	imageName, imageData, err := readFormImage(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:    userID,
		Title:     c.FormValue("title"),
		Content:   c.FormValue("content"),
		ImageName: imageName,
		ImageData: imageData,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts?page=N&pageSize=M
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c)

	page, err := s.postService.ListPosts(c.Context(), p.Page, p.PageSize)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(page)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id (multipart form: title, content, optional image)
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	imageName, imageData, err := readFormImage(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:    userID,
		PostID:    postID,
		Title:     c.FormValue("title"),
		Content:   c.FormValue("content"),
		ImageName: imageName,
		ImageData: imageData,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), userID, postID); err != nil {
		return models.RespondWithError(c, models.StatusForError(err), err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
