package engine

import "fmt"

const (
	maxScore         = 1000
	pointsPerSecond  = 10
	defaultExpReward = 50
)

// Score converts a finish time in seconds to points. Never negative.
func Score(finishTime int) int {
	return max(0, maxScore-finishTime*pointsPerSecond)
}

// ExpGain returns the experience reward for a 1-based room rank.
// Rank 0 means unknown.
func ExpGain(rank int) int {
	switch rank {
	case 1:
		return 200
	case 2:
		return 150
	case 3:
		return 100
	default:
		return defaultExpReward
	}
}

// FormatTime renders seconds as mm:ss.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
