package model

// Point schedule for contribution actions.
const (
	PointsWord            = 10
	PointsAudioBonus      = 5
	PointsVote            = 1
	PointsLabel           = 5
	PointsLabelAudioBonus = 3
)

// WordPoints is the award for adding a vocabulary entry.
func WordPoints(hasAudio bool) int {
	if hasAudio {
		return PointsWord + PointsAudioBonus
	}
	return PointsWord
}

// LabelPoints is the award for a daily-challenge label.
func LabelPoints(hasAudio bool) int {
	if hasAudio {
		return PointsLabel + PointsLabelAudioBonus
	}
	return PointsLabel
}
