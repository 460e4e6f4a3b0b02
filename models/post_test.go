package models_test

import (
	"testing"

	"github.com/edupath/api-go/models"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Test Post!", "test-post"},
		{"How do I become a pilot?", "how-do-i-become-a-pilot"},
		{"  spaced   out  ", "spaced-out"},
		{"C++ & Go", "c-go"},
		{"already-slugged", "already-slugged"},
	}
	for _, tc := range cases {
		if got := models.Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPostSlugCollisionSuffixes(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	hub := createTestHub(t, db, "Aviation")

	first := createTestPost(t, db, hub, user, "Test Post!")
	second := createTestPost(t, db, hub, user, "Test Post!")
	third := createTestPost(t, db, hub, user, "Test Post!")

	if first.Slug != "test-post" {
		t.Errorf("first slug = %q, want %q", first.Slug, "test-post")
	}
	if second.Slug != "test-post-2" {
		t.Errorf("second slug = %q, want %q", second.Slug, "test-post-2")
	}
	if third.Slug != "test-post-3" {
		t.Errorf("third slug = %q, want %q", third.Slug, "test-post-3")
	}
}

func TestPostScoreDerivedOnSave(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	hub := createTestHub(t, db, "Aviation")

	post := models.Post{
		HubID:     hub.ID,
		AuthorID:  &user.ID,
		Title:     "Scored",
		Content:   "body",
		PostType:  models.PostTypeQuestion,
		Upvotes:   7,
		Downvotes: 3,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.Score != 4 {
		t.Errorf("score = %d, want 4", post.Score)
	}
}

func TestIncrementViewCount(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	hub := createTestHub(t, db, "Aviation")
	post := createTestPost(t, db, hub, user, "Views")

	for i := 0; i < 3; i++ {
		if err := models.IncrementViewCount(db, post.ID); err != nil {
			t.Fatalf("increment view count: %v", err)
		}
	}

	got := reloadPost(t, db, post.ID)
	if got.ViewCount != 3 {
		t.Errorf("view_count = %d, want 3", got.ViewCount)
	}
	if got.UpdatedAt.Unix() != post.UpdatedAt.Unix() {
		t.Errorf("updated_at moved on view increment: %v -> %v", post.UpdatedAt, got.UpdatedAt)
	}
}

func TestSoftDeletePostRefreshesHubCache(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	hub := createTestHub(t, db, "Aviation")

	post := createTestPost(t, db, hub, user, "First")
	createTestPost(t, db, hub, user, "Second")

	if err := hub.RecountActivePosts(db); err != nil {
		t.Fatalf("recount active posts: %v", err)
	}
	if hub.ActivePosts != 2 {
		t.Fatalf("active_posts = %d, want 2", hub.ActivePosts)
	}

	if err := models.SoftDeletePost(db, post); err != nil {
		t.Fatalf("soft delete post: %v", err)
	}
	if !post.IsDeleted || post.DeletedAt == nil {
		t.Error("post not flagged deleted")
	}

	var fresh models.Hub
	if err := db.First(&fresh, "id = ?", hub.ID).Error; err != nil {
		t.Fatalf("reload hub: %v", err)
	}
	if fresh.ActivePosts != 1 {
		t.Errorf("active_posts = %d after delete, want 1", fresh.ActivePosts)
	}

	// The row survives for comment references.
	got := reloadPost(t, db, post.ID)
	if !got.IsDeleted {
		t.Error("deleted post row lost its flag")
	}
}
