package quiz

import "github.com/abhisek/studyquest/internal/store"

// resolveAuto picks the tier for an "auto" request from the rolling accuracy
// over the newest attempts in the subject (newest first). With no prior
// attempts the tier is Easy. Accuracy at or above promote steps the current
// tier up; at or below demote steps it down; otherwise the tier holds.
func resolveAuto(recent []*store.QuizAttempt, promote, demote float64) Difficulty {
	if len(recent) == 0 {
		return Easy
	}

	current, ok := ParseDifficulty(recent[0].Difficulty)
	if !ok {
		current = Easy
	}

	accuracy := rollingAccuracy(recent)
	switch {
	case accuracy >= promote:
		return current.StepUp()
	case accuracy <= demote:
		return current.StepDown()
	default:
		return current
	}
}

// rollingAccuracy averages the attempt scores (each already a 0-100
// percentage correct).
func rollingAccuracy(attempts []*store.QuizAttempt) float64 {
	if len(attempts) == 0 {
		return 0
	}
	var sum float64
	for _, a := range attempts {
		sum += a.Score
	}
	return sum / float64(len(attempts))
}

// recommendNext suggests the tier for the next quiz after scoring this one.
// It uses the same promote/demote thresholds as auto resolution so a
// just-scored result and the next auto request agree.
func recommendNext(score float64, current Difficulty, promote, demote float64) Difficulty {
	switch {
	case score >= promote:
		return current.StepUp()
	case score <= demote:
		return current.StepDown()
	default:
		return current
	}
}
