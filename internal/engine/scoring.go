package engine

import (
	"math"
	"time"

	"quizzle/internal/domain"
)

const (
	// AnswerTimeLimit is the maximum time to answer a question.
	AnswerTimeLimit = 20000 * time.Millisecond
	// RevealDwell is how long correctness feedback is shown before the
	// next question.
	RevealDwell = 2000 * time.Millisecond
	// streakBonusThreshold is the run length at which bonus points start.
	streakBonusThreshold = 2
)

// CalculatePoints maps answer latency and question difficulty to base
// points. Points decay linearly from the difficulty's maximum at 0ms to
// zero at the time limit. Rounding is half away from zero (math.Round),
// matching the original scoring tables.
func CalculatePoints(elapsed time.Duration, difficulty domain.Difficulty) int {
	if elapsed >= AnswerTimeLimit {
		return 0
	}

	coefficient := 1.0 - float64(elapsed)/float64(AnswerTimeLimit)
	return int(math.Round(float64(difficulty.MaxPoints()) * coefficient))
}

// StreakBonus returns the bonus for the current run of consecutive
// correct answers: streak*100 once the run reaches two, e.g. three in a
// row is worth 300 extra on the third answer.
func StreakBonus(streak int) int {
	if streak >= streakBonusThreshold {
		return streak * 100
	}
	return 0
}
