package app

import "math"

const baseQuestionScore = 1000

// ScoreAnswer computes the points gained and the new streak for a single
// answer. It is pure: the caller owns applying the result to the player.
//
// A correct answer scales the base score linearly down to zero at twice the
// time limit, then applies a streak bonus of +10% per consecutive correct
// answer beyond the first. An incorrect answer gains nothing and resets the
// streak. The zero floor on the time score is a guard against answers that
// somehow arrive past 2x the limit; the deadline timer is the real gate.
func ScoreAnswer(correct bool, elapsedSeconds float64, timeLimit, streak int) (gained, newStreak int) {
	if !correct {
		return 0, 0
	}
	timeScore := math.Max(0, math.Round(baseQuestionScore*(1-elapsedSeconds/(2*float64(timeLimit)))))
	newStreak = streak + 1
	multiplier := 1.0
	if newStreak >= 2 {
		multiplier = 1 + 0.1*float64(newStreak-1)
	}
	return int(math.Round(timeScore * multiplier)), newStreak
}
