package controllers_test

import (
	"net/http"
	"testing"

	"github.com/edupath/api-go/models"
)

func TestCreatePostRequiresMembership(t *testing.T) {
	router, db := setupTestAPI(t)
	user, token := createUserWithToken(t, db, "alice", models.RoleStudent)
	hub := seedHub(t, db, "Aviation")

	body := map[string]interface{}{
		"hub_id":    hub.ID,
		"title":     "How do I get my license?",
		"content":   "Asking for a friend.",
		"post_type": "question",
	}

	w := doRequest(t, router, http.MethodPost, "/api/posts", token, body)
	requireStatus(t, w, http.StatusForbidden)

	joinHub(t, db, hub, user)

	w = doRequest(t, router, http.MethodPost, "/api/posts", token, body)
	requireStatus(t, w, http.StatusCreated)

	var created models.Post
	decodeBody(t, w, &created)
	if created.Slug != "how-do-i-get-my-license" {
		t.Errorf("slug = %q, want %q", created.Slug, "how-do-i-get-my-license")
	}
	if created.AuthorID == nil || *created.AuthorID != user.ID {
		t.Error("author not set to caller")
	}

	var fresh models.Hub
	if err := db.First(&fresh, "id = ?", hub.ID).Error; err != nil {
		t.Fatalf("reload hub: %v", err)
	}
	if fresh.ActivePosts != 1 {
		t.Errorf("active_posts = %d, want 1", fresh.ActivePosts)
	}
}

func TestCreatePostRejectsAnonymous(t *testing.T) {
	router, db := setupTestAPI(t)
	hub := seedHub(t, db, "Aviation")

	body := map[string]interface{}{
		"hub_id":    hub.ID,
		"title":     "No token",
		"content":   "body",
		"post_type": "discussion",
	}
	w := doRequest(t, router, http.MethodPost, "/api/posts", "", body)
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestCreatePostRejectsBadType(t *testing.T) {
	router, db := setupTestAPI(t)
	user, token := createUserWithToken(t, db, "alice", models.RoleStudent)
	hub := seedHub(t, db, "Aviation")
	joinHub(t, db, hub, user)

	body := map[string]interface{}{
		"hub_id":    hub.ID,
		"title":     "Bad type",
		"content":   "body",
		"post_type": "rant",
	}
	w := doRequest(t, router, http.MethodPost, "/api/posts", token, body)
	requireStatus(t, w, http.StatusBadRequest)
}

func TestGetPostIncrementsViewCount(t *testing.T) {
	router, db := setupTestAPI(t)
	user, _ := createUserWithToken(t, db, "alice", models.RoleStudent)
	hub := seedHub(t, db, "Aviation")
	post := seedPost(t, db, hub, user, "Viewed")

	for i := 0; i < 2; i++ {
		w := doRequest(t, router, http.MethodGet, "/api/posts/"+post.ID.String(), "", nil)
		requireStatus(t, w, http.StatusOK)
	}

	var fresh models.Post
	if err := db.First(&fresh, "id = ?", post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if fresh.ViewCount != 2 {
		t.Errorf("view_count = %d, want 2", fresh.ViewCount)
	}
}

func TestGetPostAnnotatesCallerVote(t *testing.T) {
	router, db := setupTestAPI(t)
	user, token := createUserWithToken(t, db, "alice", models.RoleStudent)
	hub := seedHub(t, db, "Aviation")
	post := seedPost(t, db, hub, user, "Annotated")

	if err := models.CastVote(db, user.ID, post, models.VoteTypeUpvote); err != nil {
		t.Fatalf("cast vote: %v", err)
	}

	w := doRequest(t, router, http.MethodGet, "/api/posts/"+post.ID.String(), token, nil)
	requireStatus(t, w, http.StatusOK)

	var resp struct {
		UserVote *string `json:"user_vote"`
	}
	decodeBody(t, w, &resp)
	if resp.UserVote == nil || *resp.UserVote != "upvote" {
		t.Errorf("user_vote = %v, want upvote", resp.UserVote)
	}

	// Anonymous readers get a null annotation.
	w = doRequest(t, router, http.MethodGet, "/api/posts/"+post.ID.String(), "", nil)
	requireStatus(t, w, http.StatusOK)
	decodeBody(t, w, &resp)
	if resp.UserVote != nil {
		t.Errorf("anonymous user_vote = %v, want null", *resp.UserVote)
	}
}

func TestGetDeletedPostReturns404(t *testing.T) {
	router, db := setupTestAPI(t)
	user, _ := createUserWithToken(t, db, "alice", models.RoleStudent)
	hub := seedHub(t, db, "Aviation")
	post := seedPost(t, db, hub, user, "Gone")

	if err := models.SoftDeletePost(db, post); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	w := doRequest(t, router, http.MethodGet, "/api/posts/"+post.ID.String(), "", nil)
	requireStatus(t, w, http.StatusNotFound)

	// A 404 read leaves the deleted row's view counter untouched.
	var fresh models.Post
	if err := db.First(&fresh, "id = ?", post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if fresh.ViewCount != 0 {
		t.Errorf("view_count = %d after 404 read, want 0", fresh.ViewCount)
	}
}

func TestVotePostEndpoint(t *testing.T) {
	router, db := setupTestAPI(t)
	user, token := createUserWithToken(t, db, "alice", models.RoleStudent)
	hub := seedHub(t, db, "Aviation")
	post := seedPost(t, db, hub, user, "Voted")
	path := "/api/posts/" + post.ID.String() + "/vote"

	w := doRequest(t, router, http.MethodPost, path, token, map[string]string{"vote_type": "upvote"})
	requireStatus(t, w, http.StatusOK)

	var resp struct {
		Upvotes   int `json:"upvotes"`
		Downvotes int `json:"downvotes"`
		Score     int `json:"score"`
	}
	decodeBody(t, w, &resp)
	if resp.Upvotes != 1 || resp.Score != 1 {
		t.Errorf("after upvote: up=%d score=%d, want 1/1", resp.Upvotes, resp.Score)
	}

	// Switching the vote replaces it.
	w = doRequest(t, router, http.MethodPost, path, token, map[string]string{"vote_type": "downvote"})
	requireStatus(t, w, http.StatusOK)
	decodeBody(t, w, &resp)
	if resp.Upvotes != 0 || resp.Downvotes != 1 || resp.Score != -1 {
		t.Errorf("after switch: up=%d down=%d score=%d, want 0/1/-1",
			resp.Upvotes, resp.Downvotes, resp.Score)
	}

	w = doRequest(t, router, http.MethodPost, path, token, map[string]string{"vote_type": "sideways"})
	requireStatus(t, w, http.StatusBadRequest)

	// Unvote, then unvote again: both succeed.
	for i := 0; i < 2; i++ {
		w = doRequest(t, router, http.MethodDelete, path, token, nil)
		requireStatus(t, w, http.StatusOK)
	}
	var fresh models.Post
	if err := db.First(&fresh, "id = ?", post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if fresh.Upvotes != 0 || fresh.Downvotes != 0 || fresh.Score != 0 {
		t.Errorf("after unvote: up=%d down=%d score=%d, want 0/0/0",
			fresh.Upvotes, fresh.Downvotes, fresh.Score)
	}
}

func TestUpdatePostEditTracking(t *testing.T) {
	router, db := setupTestAPI(t)
	user, token := createUserWithToken(t, db, "alice", models.RoleStudent)
	hub := seedHub(t, db, "Aviation")
	post := seedPost(t, db, hub, user, "Original title")

	// A tags-only update leaves the edit markers alone.
	w := doRequest(t, router, http.MethodPut, "/api/posts/"+post.ID.String(), token,
		map[string]interface{}{"tags": []string{"careers"}})
	requireStatus(t, w, http.StatusOK)

	var updated models.Post
	decodeBody(t, w, &updated)
	if updated.IsEdited {
		t.Error("tags-only update marked the post edited")
	}

	w = doRequest(t, router, http.MethodPut, "/api/posts/"+post.ID.String(), token,
		map[string]interface{}{"content": "Reworded body"})
	requireStatus(t, w, http.StatusOK)
	decodeBody(t, w, &updated)
	if !updated.IsEdited {
		t.Error("content change did not mark the post edited")
	}
	if updated.EditedByID == nil || *updated.EditedByID != user.ID {
		t.Error("edited_by not recorded")
	}
	if updated.Slug != post.Slug {
		t.Errorf("slug changed on edit: %q -> %q", post.Slug, updated.Slug)
	}
}

func TestUpdatePostAuthorOnly(t *testing.T) {
	router, db := setupTestAPI(t)
	author, _ := createUserWithToken(t, db, "alice", models.RoleStudent)
	_, otherToken := createUserWithToken(t, db, "bob", models.RoleStudent)
	hub := seedHub(t, db, "Aviation")
	post := seedPost(t, db, hub, author, "Protected")

	w := doRequest(t, router, http.MethodPut, "/api/posts/"+post.ID.String(), otherToken,
		map[string]interface{}{"content": "hijacked"})
	requireStatus(t, w, http.StatusForbidden)
}

func TestDeletePostAuthorOrAdmin(t *testing.T) {
	router, db := setupTestAPI(t)
	author, _ := createUserWithToken(t, db, "alice", models.RoleStudent)
	_, strangerToken := createUserWithToken(t, db, "bob", models.RoleStudent)
	_, adminToken := createUserWithToken(t, db, "root", models.RoleAdmin)
	hub := seedHub(t, db, "Aviation")
	post := seedPost(t, db, hub, author, "Removable")

	w := doRequest(t, router, http.MethodDelete, "/api/posts/"+post.ID.String(), strangerToken, nil)
	requireStatus(t, w, http.StatusForbidden)

	w = doRequest(t, router, http.MethodDelete, "/api/posts/"+post.ID.String(), adminToken, nil)
	requireStatus(t, w, http.StatusOK)

	var fresh models.Post
	if err := db.First(&fresh, "id = ?", post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if !fresh.IsDeleted {
		t.Error("post not soft-deleted")
	}
}

func TestListPostsRejectsMalformedFilters(t *testing.T) {
	router, _ := setupTestAPI(t)

	w := doRequest(t, router, http.MethodGet, "/api/posts?hub=not-a-uuid", "", nil)
	requireStatus(t, w, http.StatusBadRequest)

	w = doRequest(t, router, http.MethodGet, "/api/posts?author=42", "", nil)
	requireStatus(t, w, http.StatusBadRequest)
}

func TestListPostsFiltersAndExcludesDeleted(t *testing.T) {
	router, db := setupTestAPI(t)
	user, _ := createUserWithToken(t, db, "alice", models.RoleStudent)
	hubA := seedHub(t, db, "Aviation")
	hubB := seedHub(t, db, "Medicine")

	seedPost(t, db, hubA, user, "A one")
	doomed := seedPost(t, db, hubA, user, "A two")
	seedPost(t, db, hubB, user, "B one")
	if err := models.SoftDeletePost(db, doomed); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	w := doRequest(t, router, http.MethodGet, "/api/posts?hub="+hubA.ID.String(), "", nil)
	requireStatus(t, w, http.StatusOK)

	var resp struct {
		Data       []models.Post `json:"data"`
		Pagination struct {
			TotalItems int64 `json:"totalItems"`
		} `json:"pagination"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Data) != 1 || resp.Pagination.TotalItems != 1 {
		t.Errorf("hub A posts = %d (total %d), want 1", len(resp.Data), resp.Pagination.TotalItems)
	}
	if len(resp.Data) == 1 && resp.Data[0].Title != "A one" {
		t.Errorf("listed post = %q, want %q", resp.Data[0].Title, "A one")
	}
}
