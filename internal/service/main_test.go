package service

import (
	"fmt"
	"os"
	"testing"

	"clipstream/internal/config"
	"clipstream/internal/model"
	"clipstream/pkg/logger"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", "console", "stdout", ""); err != nil {
		panic(err)
	}
	config.Set(&config.Config{
		App: config.AppConfig{Name: "clipstream-test"},
		JWT: config.JWTConfig{Secret: "test-secret", ExpireHours: 1},
	})
	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Video{},
		&model.Favorite{},
		&model.Relation{},
	))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()

	user := &model.User{
		Username: username,
		Password: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestVideo(t *testing.T, db *gorm.DB, authorID int64, title string) *model.Video {
	t.Helper()

	video := &model.Video{
		AuthorID: authorID,
		Title:    title,
		Status:   "published",
	}
	require.NoError(t, db.Create(video).Error)
	return video
}

func createTestUsers(t *testing.T, db *gorm.DB, n int) []*model.User {
	t.Helper()

	users := make([]*model.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, createTestUser(t, db, fmt.Sprintf("user-%d", i)))
	}
	return users
}

func fetchUser(t *testing.T, db *gorm.DB, id int64) *model.User {
	t.Helper()

	var user model.User
	require.NoError(t, db.Where("id = ?", id).First(&user).Error)
	return &user
}
