package controllers

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/edupath/api-go/models"
	"github.com/edupath/api-go/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CommentController struct {
	DB *gorm.DB
}

func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{DB: db}
}

type CreateCommentRequest struct {
	PostID          uuid.UUID  `json:"post_id" binding:"required"`
	ParentCommentID *uuid.UUID `json:"parent_comment_id"`
	Content         string     `json:"content" binding:"required"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type ListCommentsQuery struct {
	PostID          string `form:"post" binding:"required,uuid"`
	ParentCommentID string `form:"parent_comment" binding:"omitempty,uuid"`
}

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_.-]+)`)

// extractMentions pulls the distinct @usernames out of comment content.
func extractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]bool, len(matches))
	mentions := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			mentions = append(mentions, m[1])
		}
	}
	return mentions
}

// CreateComment godoc
// @Summary Create a comment
// @Description Adds a comment to a post, optionally as a reply; thread position and counters are derived server-side
// @Tags comments
// @Accept json
// @Produce json
// @Param comment body CreateCommentRequest true "Comment creation request"
// @Success 201 {object} models.Comment
// @Router /comments [post]
func (cc *CommentController) CreateComment(c *gin.Context) {
	user := utils.GetUser(c)
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.Post
	err := cc.DB.First(&post, "id = ? AND is_deleted = ?", req.PostID, false).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var parent *models.Comment
	if req.ParentCommentID != nil {
		parent = &models.Comment{}
		err := cc.DB.First(parent, "id = ?", *req.ParentCommentID).Error
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Parent comment not found"})
			return
		}
	}

	comment := models.Comment{
		PostID:      post.ID,
		AuthorID:    &user.UserID,
		Content:     req.Content,
		MentionList: extractMentions(req.Content),
	}

	if err := models.CreateComment(cc.DB, &comment, parent); err != nil {
		if errors.Is(err, models.ErrParentPostMismatch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parent comment must belong to the same post"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// ListComments godoc
// @Summary List comments
// @Description Lists a post's top-level comments, or the direct children of parent_comment when given. Siblings come back oldest first; thread order deliberately ignores score.
// @Tags comments
// @Produce json
// @Param post query string true "Post ID"
// @Param parent_comment query string false "Parent comment ID"
// @Success 200 {object} StandardResponse
// @Router /comments [get]
func (cc *CommentController) ListComments(c *gin.Context) {
	var query ListCommentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q := cc.DB.Where("post_id = ? AND is_deleted = ?", query.PostID, false)
	if query.ParentCommentID != "" {
		q = q.Where("parent_comment_id = ?", query.ParentCommentID)
	} else {
		q = q.Where("parent_comment_id IS NULL")
	}

	var comments []models.Comment
	err := q.Preload("Author").Order("created_at asc").Find(&comments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list comments"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: comments})
}

// GetThread godoc
// @Summary Retrieve a post's full comment tree
// @Description One query fetches every comment on the post; the tree is rebuilt in memory, so reply depth is unbounded. Deleted comments keep their place with content blanked.
// @Tags comments
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} StandardResponse
// @Router /posts/{id}/thread [get]
func (cc *CommentController) GetThread(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post id"})
		return
	}

	var post models.Post
	if err := cc.DB.First(&post, "id = ?", postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var comments []models.Comment
	err = cc.DB.Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at asc").
		Find(&comments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load thread"})
		return
	}

	redactDeleted(comments)
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: models.BuildThread(comments)})
}

// GetSubtree godoc
// @Summary Retrieve the replies below one comment
// @Description Uses the materialized ancestry path for a single prefix-range query over the subtree
// @Tags comments
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} StandardResponse
// @Router /comments/{id}/thread [get]
func (cc *CommentController) GetSubtree(c *gin.Context) {
	var comment models.Comment
	if err := cc.DB.First(&comment, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	descendants, err := models.CommentDescendants(cc.DB, &comment)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load replies"})
		return
	}

	redactDeleted(descendants)
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: models.BuildThread(descendants)})
}

// redactDeleted blanks soft-deleted comments so threads keep their shape
// without leaking removed content.
func redactDeleted(comments []models.Comment) {
	for i := range comments {
		if comments[i].IsDeleted {
			comments[i].Content = ""
			comments[i].MentionList = nil
			comments[i].AuthorID = nil
			comments[i].Author = nil
		}
	}
}

// UpdateComment godoc
// @Summary Edit a comment
// @Description Only the author may edit; an actual content change marks the comment edited
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "Comment ID"
// @Param comment body UpdateCommentRequest true "Comment update request"
// @Success 200 {object} models.Comment
// @Router /comments/{id} [put]
func (cc *CommentController) UpdateComment(c *gin.Context) {
	user := utils.GetUser(c)
	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var comment models.Comment
	err := cc.DB.First(&comment, "id = ? AND is_deleted = ?", c.Param("id"), false).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if comment.AuthorID == nil || *comment.AuthorID != user.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own comments"})
		return
	}

	if req.Content != comment.Content {
		err := cc.DB.Model(&comment).UpdateColumns(map[string]interface{}{
			"content":      req.Content,
			"mention_list": datatypes.NewJSONSlice(extractMentions(req.Content)),
			"updated_at":   time.Now(),
			"is_edited":    true,
		}).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
			return
		}
		if err := cc.DB.First(&comment, "id = ?", comment.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload comment"})
			return
		}
	}

	c.JSON(http.StatusOK, comment)
}

// DeleteComment godoc
// @Summary Delete a comment
// @Description Soft-deletes the comment, keeping the row so descendant paths still resolve
// @Tags comments
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} map[string]interface{}
// @Router /comments/{id} [delete]
func (cc *CommentController) DeleteComment(c *gin.Context) {
	user := utils.GetUser(c)

	var comment models.Comment
	err := cc.DB.First(&comment, "id = ? AND is_deleted = ?", c.Param("id"), false).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	isAuthor := comment.AuthorID != nil && *comment.AuthorID == user.UserID
	if !isAuthor && user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own comments"})
		return
	}

	if err := models.SoftDeleteComment(cc.DB, &comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// VoteComment godoc
// @Summary Vote on a comment
// @Description Replaces the caller's vote on the comment and returns the refreshed counts
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "Comment ID"
// @Param vote body VoteRequest true "Vote request"
// @Success 200 {object} map[string]interface{}
// @Router /comments/{id}/vote [post]
func (cc *CommentController) VoteComment(c *gin.Context) {
	user := utils.GetUser(c)
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var comment models.Comment
	err := cc.DB.First(&comment, "id = ? AND is_deleted = ?", c.Param("id"), false).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if !castVote(c, cc.DB, user.UserID, &comment, req.VoteType) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "voted",
		"upvotes":   comment.Upvotes,
		"downvotes": comment.Downvotes,
		"score":     comment.Score,
	})
}

// UnvoteComment godoc
// @Summary Remove a vote from a comment
// @Description Deletes the caller's vote if present; removing twice is a no-op
// @Tags comments
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} map[string]interface{}
// @Router /comments/{id}/vote [delete]
func (cc *CommentController) UnvoteComment(c *gin.Context) {
	user := utils.GetUser(c)

	var comment models.Comment
	err := cc.DB.First(&comment, "id = ? AND is_deleted = ?", c.Param("id"), false).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if err := models.RemoveVote(cc.DB, user.UserID, &comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove vote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "unvoted",
		"upvotes":   comment.Upvotes,
		"downvotes": comment.Downvotes,
		"score":     comment.Score,
	})
}
