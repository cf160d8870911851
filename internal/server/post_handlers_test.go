package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"ripple/internal/config"
	"ripple/internal/models"
	"ripple/internal/service"
	"ripple/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testPNG = []byte("\x89PNG\r\n\x1a\n0000000000")

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// newHandlerTestServer wires a Server with mocked repositories, a real asset
// service over a temp dir, and no event publisher.
func newHandlerTestServer(t *testing.T) (*Server, *MockPostRepository, *MockUserRepository) {
	t.Helper()

	backend, err := storage.NewFSBackend(t.TempDir())
	require.NoError(t, err)

	postRepo := new(MockPostRepository)
	userRepo := new(MockUserRepository)

	s := &Server{
		config:   &config.Config{JWTSecret: "test_secret"},
		userRepo: userRepo,
		postRepo: postRepo,
	}
	s.assetService = service.NewAssetService(backend, 8)
	s.postService = service.NewPostService(postRepo, userRepo, s.assetService, nil)
	s.userService = service.NewUserService(userRepo)
	return s, postRepo, userRepo
}

// asUser injects an authenticated user without going through JWT parsing.
func asUser(userID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	}
}

func postForm(t *testing.T, fields map[string]string, imageName string, imageData []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if imageName != "" {
		fw, err := w.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = fw.Write(imageData)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestCreatePostHandler(t *testing.T) {
	s, postRepo, userRepo := newHandlerTestServer(t)

	app := fiber.New()
	app.Post("/posts", asUser(1), s.CreatePost)

	userRepo.On("GetByID", mock.Anything, uint(1)).Return(&models.User{ID: 1}, nil)
	postRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Post")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Post).ID = 10
		}).Return(nil)

	body, contentType := postForm(t, map[string]string{
		"title":   "hello world",
		"content": "first post",
	}, "pic.png", testPNG)

	req := httptest.NewRequest(http.MethodPost, "/posts", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, uint(10), created.ID)
	assert.Equal(t, uint(1), created.UserID)
}

func TestCreatePostHandlerWithoutImage(t *testing.T) {
	s, postRepo, _ := newHandlerTestServer(t)

	app := fiber.New()
	app.Post("/posts", asUser(1), s.CreatePost)

	body, contentType := postForm(t, map[string]string{
		"title":   "hello world",
		"content": "first post",
	}, "", nil)

	req := httptest.NewRequest(http.MethodPost, "/posts", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var errResp models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, models.CodeMissingAsset, errResp.Code)
	postRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetPostsClampsPageSize(t *testing.T) {
	s, postRepo, _ := newHandlerTestServer(t)

	app := fiber.New()
	app.Get("/posts", s.GetPosts)

	postRepo.On("Count", mock.Anything).Return(int64(1), nil)
	// pageSize=500 must be clamped to the maximum before hitting the repo.
	postRepo.On("List", mock.Anything, service.MaxPageSize, service.MaxPageSize).
		Return([]*models.Post{{ID: 1}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/posts?page=2&pageSize=500", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var page service.PostPage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Equal(t, int64(1), page.Total)
	assert.Len(t, page.Posts, 1)
}

func TestGetPostHandler(t *testing.T) {
	s, postRepo, _ := newHandlerTestServer(t)

	app := fiber.New()
	app.Get("/posts/:id", s.GetPost)

	postRepo.On("GetByID", mock.Anything, uint(5)).
		Return(&models.Post{ID: 5, Title: "hello world"}, nil)
	postRepo.On("GetByID", mock.Anything, uint(404)).
		Return(nil, models.NewNotFoundError("Post", 404))

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{"Found", "/posts/5", http.StatusOK},
		{"Not Found", "/posts/404", http.StatusNotFound},
		{"Bad ID", "/posts/abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestUpdatePostHandlerForbidden(t *testing.T) {
	s, postRepo, _ := newHandlerTestServer(t)

	app := fiber.New()
	app.Put("/posts/:id", asUser(2), s.UpdatePost)

	postRepo.On("GetByID", mock.Anything, uint(5)).
		Return(&models.Post{ID: 5, UserID: 1, Title: "hello world", Content: "first post"}, nil)

	body, contentType := postForm(t, map[string]string{
		"title":   "hijacked title",
		"content": "hijacked content",
	}, "", nil)

	req := httptest.NewRequest(http.MethodPut, "/posts/5", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	postRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeletePostHandler(t *testing.T) {
	s, postRepo, _ := newHandlerTestServer(t)

	app := fiber.New()
	app.Delete("/posts/:id", asUser(1), s.DeletePost)

	postRepo.On("GetByID", mock.Anything, uint(5)).
		Return(&models.Post{ID: 5, UserID: 1}, nil)
	postRepo.On("Delete", mock.Anything, uint(5)).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/posts/5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	postRepo.AssertExpectations(t)
}

func TestDeletePostHandlerForbidden(t *testing.T) {
	s, postRepo, _ := newHandlerTestServer(t)

	app := fiber.New()
	app.Delete("/posts/:id", asUser(2), s.DeletePost)

	postRepo.On("GetByID", mock.Anything, uint(5)).
		Return(&models.Post{ID: 5, UserID: 1}, nil)

	req := httptest.NewRequest(http.MethodDelete, "/posts/5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	postRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
