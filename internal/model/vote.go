package model

import (
	"fmt"
	"time"
)

// VoteType is a user's judgment on a variant link.
type VoteType string

const (
	VoteCorrect   VoteType = "correct"
	VoteIncorrect VoteType = "incorrect"
)

// ParseVoteType validates a vote type received from a caller.
func ParseVoteType(s string) (VoteType, error) {
	switch v := VoteType(s); v {
	case VoteCorrect, VoteIncorrect:
		return v, nil
	}
	return "", NewValidationError("voteType", fmt.Sprintf("unknown vote type %q", s))
}

// Tally returns the (up, down) aggregate change for one vote of this type.
func (v VoteType) Tally() (up, down int) {
	if v == VoteCorrect {
		return 1, 0
	}
	return 0, 1
}

// Vote is one user's judgment on one variant link. Unique per (user, link).
type Vote struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	VariantLinkID string    `json:"variantLinkId"`
	VoteType      VoteType  `json:"voteType"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// VoteOutcome says which branch of the cast contract was taken.
type VoteOutcome string

const (
	// VoteRecorded is a first vote: aggregates and points were applied.
	VoteRecorded VoteOutcome = "recorded"
	// VoteAlreadyCast is a resubmission of the same type: nothing changed.
	VoteAlreadyCast VoteOutcome = "already_voted"
	// VoteChanged replaced an earlier vote of the other type; no points.
	VoteChanged VoteOutcome = "changed"
)

// VoteResult reports the effect of casting a vote.
type VoteResult struct {
	Outcome  VoteOutcome  `json:"outcome"`
	Vote     *Vote        `json:"vote"`
	Link     *VariantLink `json:"link"`
	Previous VoteType     `json:"previous,omitempty"`
	// Profile is set when the vote awarded points.
	Profile   *Profile `json:"profile,omitempty"`
	NewBadges []Badge  `json:"newBadges,omitempty"`
}
