package controllers

import (
	"math"
	"net/http"
	"time"

	"github.com/edupath/api-go/models"
	"github.com/edupath/api-go/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SocietyController struct {
	DB *gorm.DB
}

func NewSocietyController(db *gorm.DB) *SocietyController {
	return &SocietyController{DB: db}
}

type ListSocietiesQuery struct {
	PageQuery
	Type   string `form:"type"`
	Search string `form:"search"`
}

type CreateSocietyPostRequest struct {
	SocietyID uuid.UUID `json:"society_id" binding:"required"`
	Title     string    `json:"title" binding:"required,max=300"`
	Content   string    `json:"content" binding:"required"`
	PostType  string    `json:"post_type" binding:"omitempty,oneof=announcement question opportunity discussion"`
	Tags      []string  `json:"tags"`
}

type UpdateSocietyPostRequest struct {
	Title   string `json:"title" binding:"omitempty,max=300"`
	Content string `json:"content"`
}

type ListSocietyPostsQuery struct {
	PageQuery
	SocietyID string `form:"society" binding:"omitempty,uuid"`
	PostType  string `form:"post_type" binding:"omitempty,oneof=announcement question opportunity discussion"`
}

// ListSocieties godoc
// @Summary List professional societies
// @Tags societies
// @Produce json
// @Param type query string false "Society type filter"
// @Param search query string false "Search in name, acronym and description"
// @Success 200 {object} StandardResponse
// @Router /societies [get]
func (sc *SocietyController) ListSocieties(c *gin.Context) {
	var query ListSocietiesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q := sc.DB.Model(&models.Society{})
	if query.Type != "" {
		q = q.Where("type = ?", query.Type)
	}
	if query.Search != "" {
		like := "%" + query.Search + "%"
		q = q.Where("name LIKE ? OR acronym LIKE ? OR full_name LIKE ? OR description LIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count societies"})
		return
	}

	var societies []models.Society
	err := q.Order("name asc").
		Offset(query.Offset()).
		Limit(query.PageSize).
		Find(&societies).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list societies"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    societies,
		Pagination: &PaginationMeta{
			CurrentPage: query.Page,
			PageSize:    query.PageSize,
			TotalItems:  total,
			TotalPages:  int(math.Ceil(float64(total) / float64(query.PageSize))),
		},
	})
}

// GetSociety godoc
// @Summary Retrieve a society
// @Tags societies
// @Produce json
// @Param id path string true "Society ID"
// @Success 200 {object} models.Society
// @Router /societies/{id} [get]
func (sc *SocietyController) GetSociety(c *gin.Context) {
	var society models.Society
	if err := sc.DB.First(&society, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Society not found"})
		return
	}
	c.JSON(http.StatusOK, society)
}

// ListSocietyPosts godoc
// @Summary List society posts
// @Tags societies
// @Produce json
// @Param society query string false "Society ID"
// @Param post_type query string false "Post type filter"
// @Success 200 {object} StandardResponse
// @Router /society-posts [get]
func (sc *SocietyController) ListSocietyPosts(c *gin.Context) {
	var query ListSocietyPostsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q := sc.DB.Model(&models.SocietyPost{}).Where("is_deleted = ?", false)
	if query.SocietyID != "" {
		q = q.Where("society_id = ?", query.SocietyID)
	}
	if query.PostType != "" {
		q = q.Where("post_type = ?", query.PostType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count society posts"})
		return
	}

	var posts []models.SocietyPost
	err := q.Preload("Author").
		Order("created_at desc").
		Offset(query.Offset()).
		Limit(query.PageSize).
		Find(&posts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list society posts"})
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

// CreateSocietyPost godoc
// @Summary Create a society post
// @Description Publishes a post inside a society; requires contributor role or above
// @Tags societies
// @Accept json
// @Produce json
// @Param post body CreateSocietyPostRequest true "Society post creation request"
// @Success 201 {object} models.SocietyPost
// @Router /society-posts [post]
func (sc *SocietyController) CreateSocietyPost(c *gin.Context) {
	user := utils.GetUser(c)
	var req CreateSocietyPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var author models.User
	if err := sc.DB.First(&author, "id = ?", user.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if !author.CanContribute() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Contributor role required to post in societies"})
		return
	}

	var society models.Society
	if err := sc.DB.First(&society, "id = ?", req.SocietyID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Society not found"})
		return
	}

	postType := req.PostType
	if postType == "" {
		postType = models.SocietyPostTypeDiscussion
	}

	post := models.SocietyPost{
		SocietyID: society.ID,
		AuthorID:  &author.ID,
		Title:     req.Title,
		Content:   req.Content,
		PostType:  postType,
		Tags:      req.Tags,
	}

	if err := sc.DB.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create society post"})
		return
	}

	c.JSON(http.StatusCreated, post)
}

// UpdateSocietyPost godoc
// @Summary Update a society post
// @Tags societies
// @Accept json
// @Produce json
// @Param id path string true "Society post ID"
// @Param post body UpdateSocietyPostRequest true "Society post update request"
// @Success 200 {object} models.SocietyPost
// @Router /society-posts/{id} [put]
func (sc *SocietyController) UpdateSocietyPost(c *gin.Context) {
	user := utils.GetUser(c)
	var req UpdateSocietyPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.SocietyPost
	err := sc.DB.First(&post, "id = ? AND is_deleted = ?", c.Param("id"), false).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Society post not found"})
		return
	}

	if post.AuthorID == nil || *post.AuthorID != user.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own posts"})
		return
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Content != "" {
		updates["content"] = req.Content
	}
	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := sc.DB.Model(&post).UpdateColumns(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update society post"})
			return
		}
		if err := sc.DB.First(&post, "id = ?", post.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload society post"})
			return
		}
	}

	c.JSON(http.StatusOK, post)
}

// DeleteSocietyPost godoc
// @Summary Delete a society post
// @Tags societies
// @Produce json
// @Param id path string true "Society post ID"
// @Success 200 {object} map[string]interface{}
// @Router /society-posts/{id} [delete]
func (sc *SocietyController) DeleteSocietyPost(c *gin.Context) {
	user := utils.GetUser(c)

	var post models.SocietyPost
	err := sc.DB.First(&post, "id = ? AND is_deleted = ?", c.Param("id"), false).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Society post not found"})
		return
	}

	isAuthor := post.AuthorID != nil && *post.AuthorID == user.UserID
	if !isAuthor && user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own posts"})
		return
	}

	err = sc.DB.Model(&post).UpdateColumns(map[string]interface{}{
		"is_deleted": true,
		"deleted_at": time.Now(),
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete society post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// VoteSocietyPost godoc
// @Summary Vote on a society post
// @Tags societies
// @Accept json
// @Produce json
// @Param id path string true "Society post ID"
// @Param vote body VoteRequest true "Vote request"
// @Success 200 {object} map[string]interface{}
// @Router /society-posts/{id}/vote [post]
func (sc *SocietyController) VoteSocietyPost(c *gin.Context) {
	user := utils.GetUser(c)
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.SocietyPost
	err := sc.DB.First(&post, "id = ? AND is_deleted = ?", c.Param("id"), false).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Society post not found"})
		return
	}

	if !castVote(c, sc.DB, user.UserID, &post, req.VoteType) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "voted",
		"upvotes":   post.Upvotes,
		"downvotes": post.Downvotes,
	})
}

// UnvoteSocietyPost godoc
// @Summary Remove a vote from a society post
// @Tags societies
// @Produce json
// @Param id path string true "Society post ID"
// @Success 200 {object} map[string]interface{}
// @Router /society-posts/{id}/vote [delete]
func (sc *SocietyController) UnvoteSocietyPost(c *gin.Context) {
	user := utils.GetUser(c)

	var post models.SocietyPost
	err := sc.DB.First(&post, "id = ? AND is_deleted = ?", c.Param("id"), false).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Society post not found"})
		return
	}

	if err := models.RemoveVote(sc.DB, user.UserID, &post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove vote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "unvoted",
		"upvotes":   post.Upvotes,
		"downvotes": post.Downvotes,
	})
}
