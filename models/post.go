package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Post types accepted for hub posts.
const (
	PostTypeQuestion     = "question"
	PostTypeGuide        = "guide"
	PostTypeDiscussion   = "discussion"
	PostTypeSuccessStory = "success_story"
)

// Post is a top-level discussion entry in a hub. Upvotes, Downvotes and
// Score cache the vote ledger and are only ever rebuilt by recounting it;
// UpdatedAt moves on title/content changes, never on vote writes.
type Post struct {
	ID           uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	HubID        uuid.UUID                   `json:"hub_id" gorm:"type:uuid;not null;index:idx_posts_hub_created"`
	Hub          Hub                         `json:"-" gorm:"foreignKey:HubID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	AuthorID     *uuid.UUID                  `json:"author_id" gorm:"type:uuid;index"`
	Author       *User                       `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Title        string                      `json:"title" gorm:"size:300;not null"`
	Slug         string                      `json:"slug" gorm:"size:350;uniqueIndex"`
	Content      string                      `json:"content" gorm:"type:text;not null"`
	PostType     string                      `json:"post_type" gorm:"size:20;not null;index"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	Upvotes      int                         `json:"upvotes" gorm:"not null;default:0"`
	Downvotes    int                         `json:"downvotes" gorm:"not null;default:0"`
	Score        int                         `json:"score" gorm:"not null;default:0;index"`
	ViewCount    int                         `json:"view_count" gorm:"not null;default:0"`
	CommentCount int                         `json:"comment_count" gorm:"not null;default:0"`
	IsPinned     bool                        `json:"is_pinned" gorm:"not null;default:false"`
	IsFeatured   bool                        `json:"is_featured" gorm:"not null;default:false"`
	IsDeleted    bool                        `json:"is_deleted" gorm:"not null;default:false;index"`
	IsEdited     bool                        `json:"is_edited" gorm:"not null;default:false"`
	EditedByID   *uuid.UUID                  `json:"edited_by" gorm:"type:uuid"`
	CreatedAt    time.Time                   `json:"created_at" gorm:"index:idx_posts_hub_created"`
	UpdatedAt    time.Time                   `json:"updated_at" gorm:"autoUpdateTime:false"`
	DeletedAt    *time.Time                  `json:"deleted_at"`
}

// ValidPostType reports whether t is one of the accepted post types.
func ValidPostType(t string) bool {
	switch t {
	case PostTypeQuestion, PostTypeGuide, PostTypeDiscussion, PostTypeSuccessStory:
		return true
	}
	return false
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Slug == "" && p.Title != "" {
		base := Slugify(p.Title)
		if len(base) > 300 {
			base = base[:300]
		}
		slug, err := uniqueSlug(tx, &Post{}, base)
		if err != nil {
			return err
		}
		p.Slug = slug
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	return nil
}

// BeforeSave keeps the score cache consistent on every full save.
func (p *Post) BeforeSave(tx *gorm.DB) error {
	p.Score = p.Upvotes - p.Downvotes
	return nil
}

// VoteTarget implements Votable.
func (p *Post) VoteTarget() (VotableType, uuid.UUID) {
	return VotablePost, p.ID
}

// SetVoteCounts implements Votable.
func (p *Post) SetVoteCounts(upvotes, downvotes int) map[string]interface{} {
	p.Upvotes = upvotes
	p.Downvotes = downvotes
	p.Score = upvotes - downvotes
	return map[string]interface{}{
		"upvotes":   p.Upvotes,
		"downvotes": p.Downvotes,
		"score":     p.Score,
	}
}

// IncrementViewCount bumps view_count server-side so concurrent readers
// never lose an increment.
func IncrementViewCount(db *gorm.DB, postID uuid.UUID) error {
	return db.Model(&Post{}).Where("id = ?", postID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

// SoftDeletePost marks the post deleted and refreshes the owning hub's
// active_posts cache in one transaction. The row stays addressable so
// existing comments keep a valid post reference.
func SoftDeletePost(db *gorm.DB, post *Post) error {
	return db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		err := tx.Model(&Post{}).Where("id = ?", post.ID).
			UpdateColumns(map[string]interface{}{
				"is_deleted": true,
				"deleted_at": now,
			}).Error
		if err != nil {
			return err
		}
		post.IsDeleted = true
		post.DeletedAt = &now
		hub := Hub{ID: post.HubID}
		return hub.RecountActivePosts(tx)
	})
}
