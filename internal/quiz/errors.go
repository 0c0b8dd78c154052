package quiz

import "errors"

var (
	// ErrUnknownQuiz indicates a quiz id with no in-flight instance.
	ErrUnknownQuiz = errors.New("unknown quiz")

	// ErrAlreadySubmitted indicates the quiz is past InProgress.
	ErrAlreadySubmitted = errors.New("quiz already submitted")

	// ErrInsufficientQuestions indicates the bank could not supply enough
	// distinct questions for the resolved subject and tier.
	ErrInsufficientQuestions = errors.New("insufficient questions")

	// ErrNoHintsAvailable is returned when a hint is requested but the
	// student has no hint uses left.
	ErrNoHintsAvailable = errors.New("no hints available")
)
