package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrParentPostMismatch is returned when a reply targets a parent comment
// that belongs to a different post.
var ErrParentPostMismatch = errors.New("parent comment must belong to the same post")

// ThreadPath is the ancestor chain of a comment, root first. It is kept
// as typed UUIDs in memory and stored as the dot-joined string the
// path-prefix queries run against ("<root>.<child>....."). Empty for
// top-level comments, which persist as NULL.
type ThreadPath []uuid.UUID

func (p ThreadPath) String() string {
	parts := make([]string, len(p))
	for i, id := range p {
		parts[i] = id.String()
	}
	return strings.Join(parts, ".")
}

// Value implements driver.Valuer.
func (p ThreadPath) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return p.String(), nil
}

// Scan implements sql.Scanner.
func (p *ThreadPath) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported thread path type %T", value)
	}
	if raw == "" {
		*p = nil
		return nil
	}
	parts := strings.Split(raw, ".")
	path := make(ThreadPath, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(part)
		if err != nil {
			return fmt.Errorf("invalid thread path segment %q: %w", part, err)
		}
		path = append(path, id)
	}
	*p = path
	return nil
}

// MarshalJSON emits the wire form: null for top-level comments, the
// dot-joined string otherwise.
func (p ThreadPath) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(p.String())
}

func (p *ThreadPath) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*p = nil
		return nil
	}
	return p.Scan(*raw)
}

// Comment is a reply in a post's discussion tree. Depth and Path are
// derived on save and never taken from the client; deletion is logical so
// descendant paths keep resolving.
type Comment struct {
	ID              uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	PostID          uuid.UUID                   `json:"post_id" gorm:"type:uuid;not null;index:idx_comments_post_parent"`
	Post            Post                        `json:"-" gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	AuthorID        *uuid.UUID                  `json:"author_id" gorm:"type:uuid;index"`
	Author          *User                       `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	ParentCommentID *uuid.UUID                  `json:"parent_comment_id" gorm:"type:uuid;index:idx_comments_post_parent"`
	ParentComment   *Comment                    `json:"-" gorm:"foreignKey:ParentCommentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Content         string                      `json:"content" gorm:"type:text;not null"`
	Depth           int                         `json:"depth" gorm:"not null;default:0"`
	Path            ThreadPath                  `json:"path" gorm:"type:text;index"`
	Upvotes         int                         `json:"upvotes" gorm:"not null;default:0"`
	Downvotes       int                         `json:"downvotes" gorm:"not null;default:0"`
	Score           int                         `json:"score" gorm:"not null;default:0"`
	ReplyCount      int                         `json:"reply_count" gorm:"not null;default:0"`
	MentionList     datatypes.JSONSlice[string] `json:"mention_list"`
	IsDeleted       bool                        `json:"is_deleted" gorm:"not null;default:false;index"`
	IsPinned        bool                        `json:"is_pinned" gorm:"not null;default:false"`
	IsEdited        bool                        `json:"is_edited" gorm:"not null;default:false"`
	CreatedAt       time.Time                   `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time                   `json:"updated_at" gorm:"autoUpdateTime:false"`
	DeletedAt       *time.Time                  `json:"deleted_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}
	return nil
}

// BeforeSave keeps the score cache consistent on every full save.
func (c *Comment) BeforeSave(tx *gorm.DB) error {
	c.Score = c.Upvotes - c.Downvotes
	return nil
}

// SetThreadPosition derives depth and path from the parent. A nil parent
// yields a top-level comment; a parent from another post is rejected.
func (c *Comment) SetThreadPosition(parent *Comment) error {
	if parent == nil {
		c.ParentCommentID = nil
		c.Depth = 0
		c.Path = nil
		return nil
	}
	if parent.PostID != c.PostID {
		return ErrParentPostMismatch
	}
	c.ParentCommentID = &parent.ID
	c.Depth = parent.Depth + 1
	c.Path = append(append(ThreadPath{}, parent.Path...), parent.ID)
	return nil
}

// VoteTarget implements Votable.
func (c *Comment) VoteTarget() (VotableType, uuid.UUID) {
	return VotableComment, c.ID
}

// SetVoteCounts implements Votable.
func (c *Comment) SetVoteCounts(upvotes, downvotes int) map[string]interface{} {
	c.Upvotes = upvotes
	c.Downvotes = downvotes
	c.Score = upvotes - downvotes
	return map[string]interface{}{
		"upvotes":   c.Upvotes,
		"downvotes": c.Downvotes,
		"score":     c.Score,
	}
}

// CreateComment inserts the comment and bumps parent.reply_count and
// post.comment_count as one atomic unit. A partially applied create
// (row without counters, or counters without row) cannot occur.
func CreateComment(db *gorm.DB, comment *Comment, parent *Comment) error {
	if err := comment.SetThreadPosition(parent); err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		if parent != nil {
			err := tx.Model(&Comment{}).Where("id = ?", parent.ID).
				UpdateColumn("reply_count", gorm.Expr("reply_count + ?", 1)).Error
			if err != nil {
				return err
			}
		}
		return tx.Model(&Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1)).Error
	})
}

// SoftDeleteComment flags the comment deleted and decrements the two
// counters its creation incremented, all in one transaction. The row and
// its path survive so descendants still resolve; descendants themselves
// are not deleted and not re-counted.
func SoftDeleteComment(db *gorm.DB, comment *Comment) error {
	return db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		err := tx.Model(&Comment{}).Where("id = ?", comment.ID).
			UpdateColumns(map[string]interface{}{
				"is_deleted": true,
				"deleted_at": now,
			}).Error
		if err != nil {
			return err
		}
		comment.IsDeleted = true
		comment.DeletedAt = &now
		if comment.ParentCommentID != nil {
			err := tx.Model(&Comment{}).Where("id = ?", *comment.ParentCommentID).
				UpdateColumn("reply_count", gorm.Expr("reply_count - ?", 1)).Error
			if err != nil {
				return err
			}
		}
		return tx.Model(&Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - ?", 1)).Error
	})
}

// CommentDescendants returns every comment below c, ordered by creation
// time, using a single path-prefix range query instead of per-node
// recursion. UUID segments are fixed width, so a plain prefix match
// cannot cross sibling boundaries.
func CommentDescendants(db *gorm.DB, c *Comment) ([]Comment, error) {
	prefix := append(append(ThreadPath{}, c.Path...), c.ID).String()
	var descendants []Comment
	err := db.Where("post_id = ? AND path LIKE ?", c.PostID, prefix+"%").
		Order("created_at asc").
		Find(&descendants).Error
	return descendants, err
}

// CommentNode is a comment with its replies resolved, as rendered in a
// thread.
type CommentNode struct {
	Comment
	Replies []*CommentNode `json:"replies"`
}

// BuildThread links a flat, created_at-ascending comment slice into reply
// trees with an iterative pass over an id-indexed arena, so thread depth
// never touches the call stack. Comments whose parent is not in the input
// become roots.
func BuildThread(comments []Comment) []*CommentNode {
	nodes := make(map[uuid.UUID]*CommentNode, len(comments))
	for i := range comments {
		nodes[comments[i].ID] = &CommentNode{
			Comment: comments[i],
			Replies: []*CommentNode{},
		}
	}
	var roots []*CommentNode
	for i := range comments {
		node := nodes[comments[i].ID]
		if pid := comments[i].ParentCommentID; pid != nil {
			if parent, ok := nodes[*pid]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
