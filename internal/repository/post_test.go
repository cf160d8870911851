package repository

import (
	"context"
	"testing"
	"time"

	"ripple/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestPostRepository_List(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "title", "content", "image_url", "user_id", "created_at"}).
		AddRow(3, "third", "newest post", "/images/c.png", 1, now).
		AddRow(2, "second", "older post", "/images/b.png", 1, now.Add(-time.Minute))
	mock.ExpectQuery(`SELECT (.+) FROM "posts" (.+)ORDER BY created_at DESC, id DESC`).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Ada"))

	posts, err := repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, uint(3), posts[0].ID)
	assert.Equal(t, uint(2), posts[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Two pages of two over three posts must be disjoint, cover everything, and
// stay newest-first across the page boundary. Two of the posts share a
// creation timestamp so the id tie-break is load-bearing.
func TestPostRepository_ListPagesAreDisjointAndComplete(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}))

	user := models.User{Email: "ada@example.com", Name: "Ada", Password: "hash"}
	require.NoError(t, db.Create(&user).Error)

	now := time.Now().Truncate(time.Second)
	posts := []models.Post{
		{Title: "oldest", Content: "first written", ImageURL: "/images/a.png", UserID: user.ID, CreatedAt: now.Add(-time.Hour)},
		{Title: "tied low", Content: "same instant", ImageURL: "/images/b.png", UserID: user.ID, CreatedAt: now},
		{Title: "tied high", Content: "same instant", ImageURL: "/images/c.png", UserID: user.ID, CreatedAt: now},
	}
	for i := range posts {
		require.NoError(t, db.Create(&posts[i]).Error)
	}

	repo := NewPostRepository(db)
	ctx := context.Background()

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	first, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	second, err := repo.List(ctx, 2, 2)
	require.NoError(t, err)

	require.Len(t, first, 2)
	require.Len(t, second, 1)

	seen := map[uint]bool{}
	for _, p := range append(first, second...) {
		assert.False(t, seen[p.ID], "post %d appeared on both pages", p.ID)
		seen[p.ID] = true
	}
	assert.Len(t, seen, 3)

	// Newest first: the tied pair ordered by descending id, the older post last.
	assert.Equal(t, "tied high", first[0].Title)
	assert.Equal(t, "tied low", first[1].Title)
	assert.Equal(t, "oldest", second[0].Title)
}

func TestPostRepository_Count(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM "posts" WHERE "posts"."id" = \$1`).
		WithArgs(404, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := repo.GetByID(context.Background(), 404)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestPostRepository_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "posts" SET "deleted_at"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByUserID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	rows := sqlmock.NewRows([]string{"id", "title", "user_id"}).
		AddRow(9, "mine", 4)
	mock.ExpectQuery(`SELECT (.+) FROM "posts" WHERE user_id = \$1`).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(4, "Grace"))

	posts, err := repo.GetByUserID(context.Background(), 4, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, uint(4), posts[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
