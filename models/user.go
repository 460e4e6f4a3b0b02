package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles, lowest to highest privilege.
const (
	RoleStudent     = "student"
	RoleContributor = "contributor"
	RoleMentor      = "mentor"
	RoleAdmin       = "admin"
)

type User struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username   string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email      string    `json:"email" gorm:"uniqueIndex;not null"`
	Password   string    `json:"-" gorm:"not null"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Role       string    `json:"role" gorm:"size:20;not null;default:student"`
	Avatar     string    `json:"avatar"`
	Bio        string    `json:"bio" gorm:"type:text"`
	GoogleID   string    `json:"-" gorm:"index"`
	IsVerified bool      `json:"is_verified" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// CanContribute reports whether the user may publish society posts.
func (u *User) CanContribute() bool {
	switch u.Role {
	case RoleContributor, RoleMentor, RoleAdmin:
		return true
	}
	return false
}
