package models

import (
	"strconv"
	"time"

	"github.com/emilythestrangee/vote-tally/backend/internal/tally"
)

const (
	TargetPost    = "post"
	TargetComment = "comment"
)

// VoteEvent is published after a vote has been applied and stored.
// CommentID is zero for post votes.
type VoteEvent struct {
	ID         string           `json:"id"`
	TargetType string           `json:"target_type"`
	PostID     int              `json:"post_id"`
	CommentID  int              `json:"comment_id,omitempty"`
	Action     tally.VoteAction `json:"action"`
	Tally      tally.VoteTally  `json:"tally"`
	Result     tally.VoteResult `json:"result"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// Key identifies the voted item, e.g. "post:12" or "comment:7".
func (e VoteEvent) Key() string {
	if e.TargetType == TargetComment {
		return TargetComment + ":" + strconv.Itoa(e.CommentID)
	}
	return TargetPost + ":" + strconv.Itoa(e.PostID)
}

// TallyRequest is the body of the stateless engine endpoints.
type TallyRequest struct {
	Tally  TallyInput `json:"tally"`
	Action string     `json:"action"`
}

type TallyInput struct {
	Upvotes   int `json:"upvotes" binding:"min=0"`
	Downvotes int `json:"downvotes" binding:"min=0"`
}

func (in TallyInput) VoteTally() tally.VoteTally {
	return tally.VoteTally{Upvotes: in.Upvotes, Downvotes: in.Downvotes}
}
