package controllers

import (
	"math"
	"net/http"
	"time"

	"github.com/edupath/api-go/models"
	"github.com/edupath/api-go/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PostController struct {
	DB *gorm.DB
}

func NewPostController(db *gorm.DB) *PostController {
	return &PostController{DB: db}
}

type CreatePostRequest struct {
	HubID    uuid.UUID `json:"hub_id" binding:"required"`
	Title    string    `json:"title" binding:"required,max=300"`
	Content  string    `json:"content" binding:"required"`
	PostType string    `json:"post_type" binding:"required,oneof=question guide discussion success_story"`
	Tags     []string  `json:"tags"`
}

type UpdatePostRequest struct {
	Title   string    `json:"title" binding:"omitempty,max=300"`
	Content string    `json:"content"`
	Tags    *[]string `json:"tags"`
}

type ListPostsQuery struct {
	PageQuery
	HubID    string `form:"hub" binding:"omitempty,uuid"`
	PostType string `form:"post_type" binding:"omitempty,oneof=question guide discussion success_story"`
	AuthorID string `form:"author" binding:"omitempty,uuid"`
}

// PostResponse is a post annotated with the caller's relationship to it.
type PostResponse struct {
	models.Post
	UserVote *models.VoteType `json:"user_vote"`
	IsMember bool             `json:"is_member"`
}

// CreatePost godoc
// @Summary Create a post in a hub
// @Description Creates a discussion post; the caller must be a hub member
// @Tags posts
// @Accept json
// @Produce json
// @Param post body CreatePostRequest true "Post creation request"
// @Success 201 {object} models.Post
// @Router /posts [post]
func (pc *PostController) CreatePost(c *gin.Context) {
	user := utils.GetUser(c)
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var hub models.Hub
	if err := pc.DB.First(&hub, "id = ?", req.HubID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Hub not found"})
		return
	}

	isMember, err := hub.HasMember(pc.DB, user.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check hub membership"})
		return
	}
	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{"error": "You must be a member of this hub to create posts"})
		return
	}

	post := models.Post{
		HubID:    hub.ID,
		AuthorID: &user.UserID,
		Title:    req.Title,
		Content:  req.Content,
		PostType: req.PostType,
		Tags:     req.Tags,
	}

	tx := pc.DB.Begin()
	if err := tx.Create(&post).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}
	if err := hub.RecountActivePosts(tx); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update hub statistics"})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusCreated, post)
}

// GetPost godoc
// @Summary Retrieve a single post
// @Description Returns the post, bumping its view count; annotates the caller's vote when authenticated
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} PostResponse
// @Router /posts/{id} [get]
func (pc *PostController) GetPost(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post id"})
		return
	}

	var post models.Post
	err = pc.DB.Preload("Author").
		First(&post, "id = ? AND is_deleted = ?", postID, false).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	// Only reads that actually resolve an active post count as views.
	if err := models.IncrementViewCount(pc.DB, postID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update view count"})
		return
	}
	post.ViewCount++

	response := PostResponse{Post: post}
	if user := utils.GetUser(c); user != nil {
		vote, err := models.UserVote(pc.DB, user.UserID, &post)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load vote state"})
			return
		}
		response.UserVote = vote
		hub := models.Hub{ID: post.HubID}
		response.IsMember, _ = hub.HasMember(pc.DB, user.UserID)
	}

	c.JSON(http.StatusOK, response)
}

// ListPosts godoc
// @Summary List posts
// @Description Lists active posts, optionally filtered by hub, type and author
// @Tags posts
// @Produce json
// @Param hub query string false "Hub ID"
// @Param post_type query string false "Post type"
// @Param author query string false "Author ID"
// @Param page query integer false "Page number (default: 1)"
// @Param pageSize query integer false "Items per page (default: 20, max: 50)"
// @Success 200 {object} StandardResponse
// @Router /posts [get]
func (pc *PostController) ListPosts(c *gin.Context) {
	var query ListPostsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q := pc.DB.Model(&models.Post{}).Where("is_deleted = ?", false)
	if query.HubID != "" {
		q = q.Where("hub_id = ?", query.HubID)
	}
	if query.PostType != "" {
		q = q.Where("post_type = ?", query.PostType)
	}
	if query.AuthorID != "" {
		q = q.Where("author_id = ?", query.AuthorID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count posts"})
		return
	}

	var posts []models.Post
	err := q.Preload("Author").
		Order("created_at desc").
		Offset(query.Offset()).
		Limit(query.PageSize).
		Find(&posts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list posts"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    posts,
		Pagination: &PaginationMeta{
			CurrentPage: query.Page,
			PageSize:    query.PageSize,
			TotalItems:  total,
			TotalPages:  int(math.Ceil(float64(total) / float64(query.PageSize))),
		},
	})
}

// UpdatePost godoc
// @Summary Update a post
// @Description Updates title/content/tags; only the author may edit. Content changes mark the post edited.
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param post body UpdatePostRequest true "Post update request"
// @Success 200 {object} models.Post
// @Router /posts/{id} [put]
func (pc *PostController) UpdatePost(c *gin.Context) {
	user := utils.GetUser(c)
	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.Post
	err := pc.DB.First(&post, "id = ? AND is_deleted = ?", c.Param("id"), false).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if post.AuthorID == nil || *post.AuthorID != user.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own posts"})
		return
	}

	updates := make(map[string]interface{})
	contentChanged := false
	if req.Title != "" && req.Title != post.Title {
		updates["title"] = req.Title
		contentChanged = true
	}
	if req.Content != "" && req.Content != post.Content {
		updates["content"] = req.Content
		contentChanged = true
	}
	if req.Tags != nil {
		updates["tags"] = datatypes.NewJSONSlice(*req.Tags)
	}

	// updated_at moves only when the title or body actually changed;
	// tag-only and counter updates leave the edit markers alone.
	if contentChanged {
		updates["updated_at"] = time.Now()
		updates["is_edited"] = true
		updates["edited_by_id"] = user.UserID
	}

	if len(updates) > 0 {
		if err := pc.DB.Model(&post).UpdateColumns(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
			return
		}
	}

	if err := pc.DB.First(&post, "id = ?", post.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload post"})
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost godoc
// @Summary Delete a post
// @Description Soft-deletes the post; it stays addressable for existing comments
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Router /posts/{id} [delete]
func (pc *PostController) DeletePost(c *gin.Context) {
	user := utils.GetUser(c)

	var post models.Post
	err := pc.DB.First(&post, "id = ? AND is_deleted = ?", c.Param("id"), false).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	isAuthor := post.AuthorID != nil && *post.AuthorID == user.UserID
	if !isAuthor && user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own posts"})
		return
	}

	if err := models.SoftDeletePost(pc.DB, &post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// VotePost godoc
// @Summary Vote on a post
// @Description Replaces the caller's vote on the post and returns the refreshed counts
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param vote body VoteRequest true "Vote request"
// @Success 200 {object} map[string]interface{}
// @Router /posts/{id}/vote [post]
func (pc *PostController) VotePost(c *gin.Context) {
	user := utils.GetUser(c)
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.Post
	err := pc.DB.First(&post, "id = ? AND is_deleted = ?", c.Param("id"), false).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if !castVote(c, pc.DB, user.UserID, &post, req.VoteType) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "voted",
		"upvotes":   post.Upvotes,
		"downvotes": post.Downvotes,
		"score":     post.Score,
	})
}

// UnvotePost godoc
// @Summary Remove a vote from a post
// @Description Deletes the caller's vote if present; removing twice is a no-op
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Router /posts/{id}/vote [delete]
func (pc *PostController) UnvotePost(c *gin.Context) {
	user := utils.GetUser(c)

	var post models.Post
	err := pc.DB.First(&post, "id = ? AND is_deleted = ?", c.Param("id"), false).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if err := models.RemoveVote(pc.DB, user.UserID, &post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove vote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "unvoted",
		"upvotes":   post.Upvotes,
		"downvotes": post.Downvotes,
		"score":     post.Score,
	})
}
