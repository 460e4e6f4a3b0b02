package models_test

import (
	"testing"

	"github.com/edupath/api-go/config"
	"github.com/edupath/api-go/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with the full schema.
// A single connection keeps concurrent test goroutines serialized at the
// driver instead of failing with SQLITE_BUSY.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := config.MigrateModels(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &user
}

func createTestHub(t *testing.T, db *gorm.DB, name string) *models.Hub {
	t.Helper()
	hub := models.Hub{Name: name, Field: "Engineering"}
	if err := db.Create(&hub).Error; err != nil {
		t.Fatalf("create hub %s: %v", name, err)
	}
	return &hub
}

func createTestPost(t *testing.T, db *gorm.DB, hub *models.Hub, author *models.User, title string) *models.Post {
	t.Helper()
	post := models.Post{
		HubID:    hub.ID,
		AuthorID: &author.ID,
		Title:    title,
		Content:  "body of " + title,
		PostType: models.PostTypeDiscussion,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post %s: %v", title, err)
	}
	return &post
}

func createTestComment(t *testing.T, db *gorm.DB, post *models.Post, author *models.User, parent *models.Comment, content string) *models.Comment {
	t.Helper()
	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: &author.ID,
		Content:  content,
	}
	if err := models.CreateComment(db, &comment, parent); err != nil {
		t.Fatalf("create comment %q: %v", content, err)
	}
	return &comment
}

func reloadPost(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Post {
	t.Helper()
	var post models.Post
	if err := db.First(&post, "id = ?", id).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	return &post
}

func reloadComment(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Comment {
	t.Helper()
	var comment models.Comment
	if err := db.First(&comment, "id = ?", id).Error; err != nil {
		t.Fatalf("reload comment: %v", err)
	}
	return &comment
}
