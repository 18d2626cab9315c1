package model

import "fmt"

// ContributionKind selects which profile counter a contribution increments.
type ContributionKind string

const (
	ContributionWord  ContributionKind = "word"
	ContributionAudio ContributionKind = "audio"
	ContributionVote  ContributionKind = "vote"
	ContributionLabel ContributionKind = "label"
)

// ParseContributionKind validates a kind received from a caller.
func ParseContributionKind(s string) (ContributionKind, error) {
	switch k := ContributionKind(s); k {
	case ContributionWord, ContributionAudio, ContributionVote, ContributionLabel:
		return k, nil
	}
	return "", NewValidationError("kind", fmt.Sprintf("unknown contribution kind %q", s))
}

// EventReason tags a ledger event with the action that produced it.
type EventReason string

const (
	ReasonWord   EventReason = "word"
	ReasonAudio  EventReason = "audio"
	ReasonVote   EventReason = "vote"
	ReasonLabel  EventReason = "label"
	ReasonBadge  EventReason = "badge"
	ReasonManual EventReason = "manual"
)

// LedgerDelta is a set of counter increments applied to one profile in a
// single atomic update, recorded as one ledger event.
type LedgerDelta struct {
	Reason        EventReason
	Points        int
	WordsAdded    int
	AudioUploaded int
	VotesCast     int
	LabelsAdded   int
	DialectID     *int64
	OccurredOn    Date
	// TouchStreak applies the daily streak rule using OccurredOn.
	TouchStreak bool
}

// Validate rejects negative increments and a missing date.
func (d LedgerDelta) Validate() error {
	if d.Points < 0 || d.WordsAdded < 0 || d.AudioUploaded < 0 || d.VotesCast < 0 || d.LabelsAdded < 0 {
		return NewValidationError("delta", "ledger increments must not be negative")
	}
	if d.OccurredOn.IsZero() {
		return NewValidationError("occurredOn", "date is required")
	}
	return nil
}

// Add increments the counter for kind by one.
func (d *LedgerDelta) Add(kind ContributionKind) {
	switch kind {
	case ContributionWord:
		d.WordsAdded++
	case ContributionAudio:
		d.AudioUploaded++
	case ContributionVote:
		d.VotesCast++
	case ContributionLabel:
		d.LabelsAdded++
	}
}

// NextStreak applies the daily streak rule: the day after the last
// contribution extends the streak, the same day keeps it, anything else
// starts over at one. Stores implement the same rule in SQL.
func NextStreak(current int, last *Date, on Date) int {
	switch {
	case last == nil:
		return 1
	case on.Equal(*last):
		return current
	case on.Equal(last.AddDays(1)):
		return current + 1
	default:
		return 1
	}
}
