package controllers

import (
	"errors"
	"net/http"

	"github.com/edupath/api-go/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StandardResponse struct {
	Success    bool            `json:"success"`
	Data       interface{}     `json:"data,omitempty"`
	Meta       interface{}     `json:"meta,omitempty"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
	Message    string          `json:"message,omitempty"`
}

type PaginationMeta struct {
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
}

type PageQuery struct {
	Page     int `form:"page,default=1" binding:"min=1"`
	PageSize int `form:"pageSize,default=20" binding:"min=1,max=50"`
}

func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

type VoteRequest struct {
	VoteType string `json:"vote_type" binding:"required"`
}

// castVote runs the registry replace-vote and maps its failures onto the
// API error taxonomy: bad vote kind is the client's fault, a persistent
// unique-index conflict is a retryable race.
func castVote(c *gin.Context, db *gorm.DB, userID uuid.UUID, target models.Votable, voteType string) bool {
	err := models.CastVote(db, userID, target, models.VoteType(voteType))
	switch {
	case errors.Is(err, models.ErrInvalidVoteType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vote type"})
		return false
	case errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, gin.H{"error": "Vote conflict, please retry"})
		return false
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record vote"})
		return false
	}
	return true
}
