package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/edupath/api-go/config"
	"github.com/edupath/api-go/models"
	"github.com/edupath/api-go/routes"
	"github.com/edupath/api-go/utils"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestAPI wires the full router against an in-memory database, so
// tests exercise routes, middleware and controllers exactly as deployed.
func setupTestAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

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

	router := gin.New()
	routes.SetupRoutes(router, db)
	return router, db
}

// createUserWithToken seeds a user with the given role and returns a
// valid bearer token for them.
func createUserWithToken(t *testing.T, db *gorm.DB, username, role string) (*models.User, string) {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	token, err := utils.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return &user, token
}

// doRequest performs a request against the router. A non-empty token is
// sent as a bearer Authorization header; a non-nil body is JSON-encoded.
func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %s: %v", w.Body.String(), err)
	}
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, want, w.Body.String())
	}
}

func seedHub(t *testing.T, db *gorm.DB, name string) *models.Hub {
	t.Helper()
	hub := models.Hub{Name: name, Field: "Engineering"}
	if err := db.Create(&hub).Error; err != nil {
		t.Fatalf("create hub: %v", err)
	}
	return &hub
}

func seedPost(t *testing.T, db *gorm.DB, hub *models.Hub, author *models.User, title string) *models.Post {
	t.Helper()
	post := models.Post{
		HubID:    hub.ID,
		AuthorID: &author.ID,
		Title:    title,
		Content:  "body of " + title,
		PostType: models.PostTypeDiscussion,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return &post
}

func joinHub(t *testing.T, db *gorm.DB, hub *models.Hub, user *models.User) {
	t.Helper()
	if err := hub.AddMember(db, user); err != nil {
		t.Fatalf("join hub: %v", err)
	}
}

