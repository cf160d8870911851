// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"errors"
	"io"
	"mime/multipart"

	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed page/pageSize query parameters.
type Pagination struct {
	Page     int
	PageSize int
}

// parsePagination extracts page and pageSize query parameters. Out-of-range
// values are carried through as-is; the service layer clamps them.
func parsePagination(c *fiber.Ctx) Pagination {
	return Pagination{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("pageSize", service.DefaultPageSize),
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// readFormImage reads the optional multipart "image" field into memory.
// A missing field is not an error here; the service decides whether the
// operation requires an image.
func readFormImage(c *fiber.Ctx) (name string, data []byte, err error) {
	var file *multipart.FileHeader
	file, err = c.FormFile("image")
	if err != nil {
		return "", nil, nil
	}

	src, err := file.Open()
	if err != nil {
		return "", nil, models.NewValidationError("Unable to read uploaded file")
	}
	defer func() { _ = src.Close() }()

	data, err = io.ReadAll(src)
	if err != nil {
		return "", nil, models.NewValidationError("Unable to read uploaded file")
	}
	return file.Filename, data, nil
}
