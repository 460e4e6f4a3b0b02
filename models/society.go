package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Society post types.
const (
	SocietyPostTypeAnnouncement = "announcement"
	SocietyPostTypeQuestion     = "question"
	SocietyPostTypeOpportunity  = "opportunity"
	SocietyPostTypeDiscussion   = "discussion"
)

// Society is a professional body or union surfaced alongside hubs.
type Society struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"size:200;not null"`
	Acronym     string    `json:"acronym" gorm:"size:20"`
	FullName    string    `json:"full_name" gorm:"type:text"`
	Logo        string    `json:"logo" gorm:"size:10"`
	Type        string    `json:"type" gorm:"size:100;index"`
	Description string    `json:"description" gorm:"type:text"`
	Website     string    `json:"website" gorm:"size:500"`
	Hubs        []Hub     `json:"-" gorm:"many2many:society_hubs;"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Society) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SocietyPost is the third votable type. It shares the vote ledger with
// posts and comments but keeps a flat structure: no comment tree, no
// view counter.
type SocietyPost struct {
	ID        uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	SocietyID uuid.UUID                   `json:"society_id" gorm:"type:uuid;not null;index"`
	Society   Society                     `json:"-" gorm:"foreignKey:SocietyID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	AuthorID  *uuid.UUID                  `json:"author_id" gorm:"type:uuid;index"`
	Author    *User                       `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Title     string                      `json:"title" gorm:"size:300;not null"`
	Content   string                      `json:"content" gorm:"type:text;not null"`
	PostType  string                      `json:"post_type" gorm:"size:20;not null;default:discussion;index"`
	Tags      datatypes.JSONSlice[string] `json:"tags"`
	Upvotes   int                         `json:"upvotes" gorm:"not null;default:0"`
	Downvotes int                         `json:"downvotes" gorm:"not null;default:0"`
	Score     int                         `json:"score" gorm:"-"`
	IsDeleted bool                        `json:"is_deleted" gorm:"not null;default:false;index"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
	DeletedAt *time.Time                  `json:"deleted_at"`
}

// ValidSocietyPostType reports whether t is one of the accepted types.
func ValidSocietyPostType(t string) bool {
	switch t {
	case SocietyPostTypeAnnouncement, SocietyPostTypeQuestion,
		SocietyPostTypeOpportunity, SocietyPostTypeDiscussion:
		return true
	}
	return false
}

func (sp *SocietyPost) BeforeCreate(tx *gorm.DB) error {
	if sp.ID == uuid.Nil {
		sp.ID = uuid.New()
	}
	return nil
}

// AfterFind fills the derived score for serialization.
func (sp *SocietyPost) AfterFind(tx *gorm.DB) error {
	sp.Score = sp.Upvotes - sp.Downvotes
	return nil
}

// VoteTarget implements Votable.
func (sp *SocietyPost) VoteTarget() (VotableType, uuid.UUID) {
	return VotableSocietyPost, sp.ID
}

// SetVoteCounts implements Votable. Society posts have no stored score
// column; the score is derived from the two counters.
func (sp *SocietyPost) SetVoteCounts(upvotes, downvotes int) map[string]interface{} {
	sp.Upvotes = upvotes
	sp.Downvotes = downvotes
	sp.Score = upvotes - downvotes
	return map[string]interface{}{
		"upvotes":   sp.Upvotes,
		"downvotes": sp.Downvotes,
	}
}
