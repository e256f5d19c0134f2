// Package tally implements the vote tally engine: pure functions that apply
// an upvote or downvote to a tally and derive totals and percentages from it.
//
// Every function takes its full input by value and returns a new value, so
// the engine is safe to call from any number of goroutines.
package tally

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidVoteAction is returned when an action is not exactly "upvote" or
// "downvote".
var ErrInvalidVoteAction = errors.New("invalid vote action")

// VoteAction is the event of casting a vote.
type VoteAction string

const (
	Upvote   VoteAction = "upvote"
	Downvote VoteAction = "downvote"
)

// Valid reports whether a is one of the two recognized actions.
func (a VoteAction) Valid() bool {
	return a == Upvote || a == Downvote
}

// ParseVoteAction converts a raw literal into a VoteAction. Matching is exact
// and case-sensitive.
func ParseVoteAction(s string) (VoteAction, error) {
	a := VoteAction(s)
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidVoteAction, s)
	}
	return a, nil
}

// VoteTally holds the current counters of a votable item. Counters start at
// zero and only grow; callers must not pass negative counters. ApplyVote does
// not guard against overflow past math.MaxInt.
type VoteTally struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

// Votes returns the number of votes cast.
func (t VoteTally) Votes() int {
	return t.Upvotes + t.Downvotes
}

// VoteResult is derived from a VoteTally and never stored as source of truth.
type VoteResult struct {
	TotalCount         int     `json:"totalCount"`
	UpvotePercentage   float64 `json:"upvotePercentage"`
	DownvotePercentage float64 `json:"downvotePercentage"`
}

// TotalMode selects what VoteResult.TotalCount reports.
type TotalMode int

const (
	// TotalSum reports upvotes + downvotes.
	TotalSum TotalMode = iota
	// TotalNet reports upvotes - downvotes.
	TotalNet
)

func (m TotalMode) String() string {
	switch m {
	case TotalSum:
		return "sum"
	case TotalNet:
		return "net"
	default:
		return fmt.Sprintf("TotalMode(%d)", int(m))
	}
}

// ParseTotalMode parses "sum" or "net". An empty string selects TotalSum.
func ParseTotalMode(s string) (TotalMode, error) {
	switch s {
	case "", "sum":
		return TotalSum, nil
	case "net":
		return TotalNet, nil
	default:
		return TotalSum, fmt.Errorf("unknown total mode %q", s)
	}
}

// Engine applies votes and derives results. The zero value counts the total
// as the sum of votes.
type Engine struct {
	Total TotalMode
}

// ApplyVote returns a copy of t with the counter matching a incremented.
func (Engine) ApplyVote(t VoteTally, a VoteAction) (VoteTally, error) {
	switch a {
	case Upvote:
		t.Upvotes++
	case Downvote:
		t.Downvotes++
	default:
		return VoteTally{}, fmt.Errorf("%w: %q", ErrInvalidVoteAction, string(a))
	}
	return t, nil
}

// ApplyVoteAndDerive applies a to t and derives the result of the new tally.
func (e Engine) ApplyVoteAndDerive(t VoteTally, a VoteAction) (VoteResult, error) {
	next, err := e.ApplyVote(t, a)
	if err != nil {
		return VoteResult{}, err
	}
	return e.Derive(next), nil
}

// Derive computes the total and both percentages of t. Percentages are taken
// over the votes cast whatever the total mode, and are exactly 0 when no
// votes have been cast or when a counter is negative, so they always stay
// within [0,100].
func (e Engine) Derive(t VoteTally) VoteResult {
	res := VoteResult{TotalCount: t.Votes()}
	if e.Total == TotalNet {
		res.TotalCount = t.Upvotes - t.Downvotes
	}

	votes := t.Votes()
	if votes <= 0 || t.Upvotes < 0 || t.Downvotes < 0 {
		return res
	}
	res.UpvotePercentage = percentage(t.Upvotes, votes)
	res.DownvotePercentage = percentage(t.Downvotes, votes)
	return res
}

// percentage rounds part/whole*100 to two decimals, half away from zero.
func percentage(part, whole int) float64 {
	p := float64(part) * 100 / float64(whole)
	return math.Round(p*100) / 100
}

var defaultEngine Engine

// ApplyVote applies a to t using sum totals.
func ApplyVote(t VoteTally, a VoteAction) (VoteTally, error) {
	return defaultEngine.ApplyVote(t, a)
}

// ApplyVoteAndDerive applies a to t and derives the result using sum totals.
func ApplyVoteAndDerive(t VoteTally, a VoteAction) (VoteResult, error) {
	return defaultEngine.ApplyVoteAndDerive(t, a)
}

// Derive derives the result of t using sum totals.
func Derive(t VoteTally) VoteResult {
	return defaultEngine.Derive(t)
}
