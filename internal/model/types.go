package model

import "time"

// Profile holds one contributor's cumulative counters.
type Profile struct {
	UserID               string    `json:"userId"`
	DisplayName          string    `json:"displayName"`
	Email                string    `json:"email"`
	Points               int       `json:"points"`
	WordsAdded           int       `json:"wordsAdded"`
	AudioUploaded        int       `json:"audioUploaded"`
	VotesCast            int       `json:"votesCast"`
	LabelsAdded          int       `json:"labelsAdded"`
	StreakDays           int       `json:"streakDays"`
	LastContributionDate *Date     `json:"lastContributionDate,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
}

// Language groups dialects (Punjabi, Sindhi, Pashto...).
type Language struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	NativeName       *string   `json:"nativeName,omitempty"`
	Region           *string   `json:"region,omitempty"`
	ISOCode          *string   `json:"isoCode,omitempty"`
	SpeakersEstimate *int64    `json:"speakersEstimate,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Dialect is reference data for entries, labels and the weekly competition.
type Dialect struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Region     *string   `json:"region,omitempty"`
	LanguageID *int64    `json:"languageId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Entry is a single vocabulary word recorded in one dialect.
type Entry struct {
	ID              string    `json:"id"`
	Word            string    `json:"word"`
	DialectID       int64     `json:"dialectId"`
	MeaningEN       string    `json:"meaningEn"`
	MeaningUR       string    `json:"meaningUr"`
	ExampleSentence *string   `json:"exampleSentence,omitempty"`
	Script          *string   `json:"script,omitempty"`
	AudioURL        *string   `json:"audioUrl,omitempty"`
	CreatedBy       string    `json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
}

// EntrySummary is the slice of an Entry shown next to a variant link.
type EntrySummary struct {
	ID          string `json:"id"`
	Word        string `json:"word"`
	MeaningEN   string `json:"meaningEn"`
	MeaningUR   string `json:"meaningUr"`
	DialectID   int64  `json:"dialectId"`
	DialectName string `json:"dialectName"`
}

// VariantLink claims that two entries are the same word in different dialects.
// The pair is unordered; confidence is supplied by whoever created the link.
type VariantLink struct {
	ID              string    `json:"id"`
	Entry1ID        string    `json:"entry1Id"`
	Entry2ID        string    `json:"entry2Id"`
	ConfidenceScore float64   `json:"confidenceScore"`
	VotesUp         int       `json:"votesUp"`
	VotesDown       int       `json:"votesDown"`
	CreatedAt       time.Time `json:"createdAt"`
}

// VariantLinkDetail is a link joined with both of its entries.
type VariantLinkDetail struct {
	Link   VariantLink
	Entry1 EntrySummary
	Entry2 EntrySummary
}

// Variant is a link seen from one of its entries: Entry is always the other side.
type Variant struct {
	LinkID          string       `json:"linkId"`
	Entry           EntrySummary `json:"entry"`
	ConfidenceScore float64      `json:"confidence"`
	VotesUp         int          `json:"votesUp"`
	VotesDown       int          `json:"votesDown"`
}

// SeedWord is a prompt for the daily labelling challenge.
type SeedWord struct {
	ID        int64     `json:"id"`
	Word      string    `json:"word"`
	MeaningEN string    `json:"meaningEn"`
	MeaningUR *string   `json:"meaningUr,omitempty"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

// DailyLabel is one user's rendering of a seed word in their dialect.
type DailyLabel struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	SeedWordID int64     `json:"seedWordId"`
	DialectID  int64     `json:"dialectId"`
	LabelText  string    `json:"labelText"`
	AudioURL   *string   `json:"audioUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// WeeklyContribution is one user's totals for one dialect in one week.
type WeeklyContribution struct {
	UserID        string  `json:"userId"`
	UserName      string  `json:"userName"`
	DialectID     int64   `json:"dialectId"`
	DialectName   string  `json:"dialectName"`
	Region        *string `json:"region,omitempty"`
	WordsAdded    int     `json:"wordsAdded"`
	AudioUploaded int     `json:"audioUploaded"`
	LabelsAdded   int     `json:"labelsAdded"`
	PointsEarned  int     `json:"pointsEarned"`
}

// DialectStanding is a dialect's aggregate in the weekly tribe competition.
type DialectStanding struct {
	DialectID        int64   `json:"dialectId"`
	DialectName      string  `json:"dialectName"`
	Region           *string `json:"region,omitempty"`
	TotalWords       int     `json:"totalWords"`
	TotalAudio       int     `json:"totalAudio"`
	TotalLabels      int     `json:"totalLabels"`
	TotalPoints      int     `json:"totalPoints"`
	ContributorCount int     `json:"contributorCount"`
}

// WeeklyCompetition is the read-time rollup of one week's ledger events.
type WeeklyCompetition struct {
	WeekStart       Date                  `json:"weekStart"`
	Dialects        []DialectStanding     `json:"dialects"`
	TopContributors []*WeeklyContribution `json:"topContributors"`
}

// LeaderboardEntry is a ranked profile with the badges it has earned.
type LeaderboardEntry struct {
	Rank    int          `json:"rank"`
	Profile *Profile     `json:"profile"`
	Badges  []*UserBadge `json:"badges"`
}

// LedgerAudit compares a profile's points with the sum of its ledger events.
type LedgerAudit struct {
	UserID      string `json:"userId"`
	Points      int    `json:"points"`
	EventPoints int    `json:"eventPoints"`
	Consistent  bool   `json:"consistent"`
}
