package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VotableType tags which table a vote row points at.
type VotableType string

const (
	VotablePost        VotableType = "post"
	VotableComment     VotableType = "comment"
	VotableSocietyPost VotableType = "society_post"
)

// VoteType is the stance a vote records.
type VoteType string

const (
	VoteTypeUpvote   VoteType = "upvote"
	VoteTypeDownvote VoteType = "downvote"
)

// ErrInvalidVoteType is returned for a vote kind outside upvote/downvote.
var ErrInvalidVoteType = errors.New("invalid vote type")

// Vote is one user's current stance on one target. The ledger is the
// source of truth for all cached vote counters; the unique index on
// (user_id, votable_type, votable_id) is what prevents duplicate votes
// under concurrent requests.
type Vote struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_target"`
	User        User        `json:"-" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	VotableType VotableType `json:"votable_type" gorm:"size:20;not null;uniqueIndex:idx_votes_user_target;index:idx_votes_target"`
	VotableID   uuid.UUID   `json:"votable_id" gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_target;index:idx_votes_target"`
	VoteType    VoteType    `json:"vote_type" gorm:"size:10;not null"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// Votable is implemented by every row type that carries cached vote
// counters. SetVoteCounts refreshes the in-memory caches and returns the
// column updates to persist with them, so the registry can recount any
// target without knowing its schema.
type Votable interface {
	VoteTarget() (VotableType, uuid.UUID)
	SetVoteCounts(upvotes, downvotes int) map[string]interface{}
}

// CastVote replaces the user's vote on target with voteType and rebuilds
// the target's cached counters from the ledger. Delete-then-insert and
// the recount run in one transaction, so a crash can never leave the
// caches reflecting a vote the ledger lost; if a concurrent replace trips
// the unique index, the whole unit is retried once before the error
// surfaces.
func CastVote(db *gorm.DB, userID uuid.UUID, target Votable, voteType VoteType) error {
	if voteType != VoteTypeUpvote && voteType != VoteTypeDownvote {
		return ErrInvalidVoteType
	}
	votableType, votableID := target.VoteTarget()
	cast := func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			if err := replaceVote(tx, userID, votableType, votableID, voteType); err != nil {
				return err
			}
			return RecountVotes(tx, target)
		})
	}
	err := cast()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = cast()
	}
	return err
}

func replaceVote(tx *gorm.DB, userID uuid.UUID, votableType VotableType, votableID uuid.UUID, voteType VoteType) error {
	err := tx.Where("user_id = ? AND votable_type = ? AND votable_id = ?",
		userID, votableType, votableID).
		Delete(&Vote{}).Error
	if err != nil {
		return err
	}
	return tx.Create(&Vote{
		UserID:      userID,
		VotableType: votableType,
		VotableID:   votableID,
		VoteType:    voteType,
	}).Error
}

// RemoveVote deletes the user's vote on target, if any, and rebuilds the
// cached counters in the same transaction. Removing an absent vote is not
// an error.
func RemoveVote(db *gorm.DB, userID uuid.UUID, target Votable) error {
	votableType, votableID := target.VoteTarget()
	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND votable_type = ? AND votable_id = ?",
			userID, votableType, votableID).
			Delete(&Vote{}).Error
		if err != nil {
			return err
		}
		return RecountVotes(tx, target)
	})
}

// UserVote returns the user's current vote on target, or nil.
func UserVote(db *gorm.DB, userID uuid.UUID, target Votable) (*VoteType, error) {
	votableType, votableID := target.VoteTarget()
	var vote Vote
	err := db.Where("user_id = ? AND votable_type = ? AND votable_id = ?",
		userID, votableType, votableID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote.VoteType, nil
}

// RecountVotes rebuilds the target's cached upvote/downvote counters from
// the current ledger rows. Counters are never nudged by deltas here: a
// recount reflects exactly the ledger state at recount time.
func RecountVotes(db *gorm.DB, target Votable) error {
	votableType, votableID := target.VoteTarget()
	var upvotes, downvotes int64
	err := db.Model(&Vote{}).
		Where("votable_type = ? AND votable_id = ? AND vote_type = ?",
			votableType, votableID, VoteTypeUpvote).
		Count(&upvotes).Error
	if err != nil {
		return err
	}
	err = db.Model(&Vote{}).
		Where("votable_type = ? AND votable_id = ? AND vote_type = ?",
			votableType, votableID, VoteTypeDownvote).
		Count(&downvotes).Error
	if err != nil {
		return err
	}
	updates := target.SetVoteCounts(int(upvotes), int(downvotes))
	return db.Model(target).UpdateColumns(updates).Error
}
