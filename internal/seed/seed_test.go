package seed

import (
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}))
	return db
}

func TestSeederRun(t *testing.T) {
	db := setupTestDB(t)
	s := NewSeeder(db)

	require.NoError(t, s.Run(Options{Users: 5, Posts: 12}))

	var userCount, postCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	require.EqualValues(t, 5, userCount)
	require.EqualValues(t, 12, postCount)

	// Every post must belong to a seeded user.
	var orphanCount int64
	require.NoError(t, db.Model(&models.Post{}).
		Where("user_id NOT IN (?)", db.Model(&models.User{}).Select("id")).
		Count(&orphanCount).Error)
	require.Zero(t, orphanCount)
}

func TestSeederClean(t *testing.T) {
	db := setupTestDB(t)
	s := NewSeeder(db)

	require.NoError(t, s.Run(Options{Users: 2, Posts: 4}))
	require.NoError(t, s.Run(Options{Users: 3, Posts: 6, Clean: true}))

	var userCount, postCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	require.EqualValues(t, 3, userCount)
	require.EqualValues(t, 6, postCount)
}

func TestFactoryBuildsDistinctUsers(t *testing.T) {
	f := NewFactory()
	seen := map[string]struct{}{}
	for i := 0; i < 20; i++ {
		u := f.BuildUser("hash")
		require.NotEmpty(t, u.Name)
		require.Contains(t, u.Email, "@")
		seen[u.Email] = struct{}{}
	}
	require.Greater(t, len(seen), 15, "emails should be effectively unique")
}
