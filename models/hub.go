package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Hub is a career-specific community. MemberCount and ActivePosts are
// caches over the membership rows and post rows; they are rebuilt by the
// write paths and can always be recomputed from scratch.
type Hub struct {
	ID               uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	Name             string                      `json:"name" gorm:"size:200;not null"`
	Slug             string                      `json:"slug" gorm:"size:220;uniqueIndex"`
	Field            string                      `json:"field" gorm:"size:100"`
	Category         string                      `json:"category" gorm:"size:100"`
	Icon             string                      `json:"icon" gorm:"size:10"`
	IconURL          string                      `json:"icon_url" gorm:"size:500"`
	BannerURL        string                      `json:"banner_url" gorm:"size:500"`
	Color            string                      `json:"color" gorm:"size:50"`
	Description      string                      `json:"description" gorm:"type:text"`
	Rules            string                      `json:"rules" gorm:"type:text"`
	RelatedSocieties datatypes.JSONSlice[string] `json:"related_societies"`
	Members          []User                      `json:"-" gorm:"many2many:hub_members;"`
	MemberCount      int                         `json:"member_count" gorm:"not null;default:0"`
	ActivePosts      int                         `json:"active_posts" gorm:"not null;default:0"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

func (h *Hub) TableName() string {
	return "career_hubs"
}

func (h *Hub) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.Slug == "" && h.Name != "" {
		slug, err := uniqueSlug(tx, &Hub{}, Slugify(h.Name))
		if err != nil {
			return err
		}
		h.Slug = slug
	}
	return nil
}

// HasMember reports whether userID currently belongs to the hub.
func (h *Hub) HasMember(db *gorm.DB, userID uuid.UUID) (bool, error) {
	var count int64
	err := db.Table("hub_members").
		Where("hub_id = ? AND user_id = ?", h.ID, userID).
		Count(&count).Error
	return count > 0, err
}

// AddMember joins the user to the hub and refreshes the member count in
// the same transaction. Joining twice is a no-op.
func (h *Hub) AddMember(db *gorm.DB, user *User) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(h).Association("Members").Append(user); err != nil {
			return err
		}
		return h.RecountMembers(tx)
	})
}

// RemoveMember is the inverse of AddMember and is idempotent.
func (h *Hub) RemoveMember(db *gorm.DB, user *User) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(h).Association("Members").Delete(user); err != nil {
			return err
		}
		return h.RecountMembers(tx)
	})
}

// RecountMembers rebuilds the member_count cache from the membership rows.
func (h *Hub) RecountMembers(db *gorm.DB) error {
	var count int64
	if err := db.Table("hub_members").Where("hub_id = ?", h.ID).Count(&count).Error; err != nil {
		return err
	}
	h.MemberCount = int(count)
	return db.Model(&Hub{}).Where("id = ?", h.ID).
		UpdateColumn("member_count", count).Error
}

// RecountActivePosts rebuilds the active_posts cache from the post rows.
func (h *Hub) RecountActivePosts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&Post{}).Where("hub_id = ? AND is_deleted = ?", h.ID, false).Count(&count).Error; err != nil {
		return err
	}
	h.ActivePosts = int(count)
	return db.Model(&Hub{}).Where("id = ?", h.ID).
		UpdateColumn("active_posts", count).Error
}
