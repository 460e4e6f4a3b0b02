package controllers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/edupath/api-go/models"
	"github.com/edupath/api-go/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HubController struct {
	DB *gorm.DB
}

func NewHubController(db *gorm.DB) *HubController {
	return &HubController{DB: db}
}

type ListHubsQuery struct {
	PageQuery
	Search   string `form:"search"`
	Category string `form:"category"`
}

// HubResponse is a hub annotated with the caller's membership.
type HubResponse struct {
	models.Hub
	IsMember bool `json:"is_member"`
}

// ListHubs godoc
// @Summary List career hubs
// @Description Lists hubs ordered by member count, optionally filtered by search text or category
// @Tags hubs
// @Produce json
// @Param search query string false "Search in name, field and description"
// @Param category query string false "Category filter"
// @Success 200 {object} StandardResponse
// @Router /hubs [get]
func (hc *HubController) ListHubs(c *gin.Context) {
	var query ListHubsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q := hc.DB.Model(&models.Hub{})
	if query.Search != "" {
		like := "%" + query.Search + "%"
		q = q.Where("name LIKE ? OR field LIKE ? OR description LIKE ?", like, like, like)
	}
	if query.Category != "" {
		q = q.Where("category = ?", query.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count hubs"})
		return
	}

	var hubs []models.Hub
	err := q.Order("member_count desc").
		Offset(query.Offset()).
		Limit(query.PageSize).
		Find(&hubs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list hubs"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    hubs,
		Pagination: &PaginationMeta{
			CurrentPage: query.Page,
			PageSize:    query.PageSize,
			TotalItems:  total,
			TotalPages:  int(math.Ceil(float64(total) / float64(query.PageSize))),
		},
	})
}

// GetHub godoc
// @Summary Retrieve a hub
// @Tags hubs
// @Produce json
// @Param id path string true "Hub ID"
// @Success 200 {object} HubResponse
// @Router /hubs/{id} [get]
func (hc *HubController) GetHub(c *gin.Context) {
	var hub models.Hub
	if err := hc.DB.First(&hub, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Hub not found"})
		return
	}

	response := HubResponse{Hub: hub}
	if user := utils.GetUser(c); user != nil {
		response.IsMember, _ = hub.HasMember(hc.DB, user.UserID)
	}
	c.JSON(http.StatusOK, response)
}

// JoinHub godoc
// @Summary Join a hub
// @Description Adds the caller to the hub's member set and refreshes the cached member count
// @Tags hubs
// @Produce json
// @Param id path string true "Hub ID"
// @Success 200 {object} map[string]interface{}
// @Router /hubs/{id}/join [post]
func (hc *HubController) JoinHub(c *gin.Context) {
	user := utils.GetUser(c)

	var hub models.Hub
	if err := hc.DB.First(&hub, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Hub not found"})
		return
	}

	var member models.User
	if err := hc.DB.First(&member, "id = ?", user.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := hub.AddMember(hc.DB, &member); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join hub"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "joined", "hub": hub})
}

// LeaveHub godoc
// @Summary Leave a hub
// @Tags hubs
// @Produce json
// @Param id path string true "Hub ID"
// @Success 200 {object} map[string]interface{}
// @Router /hubs/{id}/leave [post]
func (hc *HubController) LeaveHub(c *gin.Context) {
	user := utils.GetUser(c)

	var hub models.Hub
	if err := hc.DB.First(&hub, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Hub not found"})
		return
	}

	var member models.User
	if err := hc.DB.First(&member, "id = ?", user.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := hub.RemoveMember(hc.DB, &member); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave hub"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "left", "hub": hub})
}

// GetOverview godoc
// @Summary Hub overview
// @Description Returns the hub together with its most recent posts
// @Tags hubs
// @Produce json
// @Param id path string true "Hub ID"
// @Success 200 {object} map[string]interface{}
// @Router /hubs/{id}/overview [get]
func (hc *HubController) GetOverview(c *gin.Context) {
	var hub models.Hub
	if err := hc.DB.First(&hub, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Hub not found"})
		return
	}

	posts, err := hc.recentPosts(hub.ID.String(), 5)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recent posts"})
		return
	}

	response := HubResponse{Hub: hub}
	if user := utils.GetUser(c); user != nil {
		response.IsMember, _ = hub.HasMember(hc.DB, user.UserID)
	}

	c.JSON(http.StatusOK, gin.H{
		"hub":          response,
		"recent_posts": posts,
	})
}

// GetRecentPosts godoc
// @Summary Recent posts in a hub
// @Description Lists the hub's newest active posts, pinned posts first
// @Tags hubs
// @Produce json
// @Param id path string true "Hub ID"
// @Param limit query integer false "Maximum posts to return (default: 10)"
// @Success 200 {object} StandardResponse
// @Router /hubs/{id}/recent-posts [get]
func (hc *HubController) GetRecentPosts(c *gin.Context) {
	var hub models.Hub
	if err := hc.DB.First(&hub, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Hub not found"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 50 {
		limit = 10
	}

	posts, err := hc.recentPosts(hub.ID.String(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recent posts"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: posts})
}

func (hc *HubController) recentPosts(hubID string, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := hc.DB.Preload("Author").
		Where("hub_id = ? AND is_deleted = ?", hubID, false).
		Order("is_pinned desc, created_at desc").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}
