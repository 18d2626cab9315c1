package model

import "time"

// Badge categories used by the catalog.
const (
	CategoryContribution = "contribution"
	CategoryEngagement   = "engagement"
	CategoryStreak       = "streak"
)

// Badge is an admin-defined achievement unlocked when a profile counter
// reaches RequirementValue.
type Badge struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Icon             string          `json:"icon"`
	Category         string          `json:"category"`
	RequirementType  RequirementType `json:"requirementType"`
	RequirementValue int             `json:"requirementValue"`
	PointsReward     int             `json:"pointsReward"`
}

// UserBadge records that a user earned a badge. At most one per (user, badge).
type UserBadge struct {
	UserID   string    `json:"userId"`
	BadgeID  int64     `json:"badgeId"`
	EarnedAt time.Time `json:"earnedAt"`
	Badge    *Badge    `json:"badge,omitempty"`
}

// RequirementType names the profile counter a badge threshold is checked against.
type RequirementType string

const (
	RequirementWordsAdded    RequirementType = "words_added"
	RequirementAudioUploaded RequirementType = "audio_uploaded"
	RequirementVotesCast     RequirementType = "votes_cast"
	RequirementStreakDays    RequirementType = "streak_days"
	RequirementPoints        RequirementType = "points"
	RequirementLabelsAdded   RequirementType = "labels_added"
)

var requirementAccessors = map[RequirementType]func(*Profile) int{
	RequirementWordsAdded:    func(p *Profile) int { return p.WordsAdded },
	RequirementAudioUploaded: func(p *Profile) int { return p.AudioUploaded },
	RequirementVotesCast:     func(p *Profile) int { return p.VotesCast },
	RequirementStreakDays:    func(p *Profile) int { return p.StreakDays },
	RequirementPoints:        func(p *Profile) int { return p.Points },
	RequirementLabelsAdded:   func(p *Profile) int { return p.LabelsAdded },
}

// Valid reports whether r maps to a profile counter.
func (r RequirementType) Valid() bool {
	_, ok := requirementAccessors[r]
	return ok
}

// Current reads the counter r refers to. ok is false for unknown types.
func (r RequirementType) Current(p *Profile) (value int, ok bool) {
	get, ok := requirementAccessors[r]
	if !ok || p == nil {
		return 0, false
	}
	return get(p), true
}

// Satisfied reports whether p meets b's threshold.
func (b *Badge) Satisfied(p *Profile) bool {
	cur, ok := b.RequirementType.Current(p)
	return ok && cur >= b.RequirementValue
}

// RequirementTypes lists every supported requirement type.
func RequirementTypes() []RequirementType {
	return []RequirementType{
		RequirementWordsAdded,
		RequirementAudioUploaded,
		RequirementVotesCast,
		RequirementStreakDays,
		RequirementPoints,
		RequirementLabelsAdded,
	}
}
