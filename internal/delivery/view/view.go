// Package view holds the player-facing text shared by every front-end.
package view

import (
	"fmt"

	"github.com/aliskhannn/trivia-quiz/internal/domain/entities"
)

const (
	MsgLoading     = "Loading questions..."
	MsgCorrect     = "Correct!"
	MsgIncorrect   = "Sorry, that is not right."
	MsgRestart     = "Restart quiz"
	MsgLoadFailed  = "Could not load questions"
	MsgAnswerLater = "Hold on, the next question is on its way."
	MsgNotRunning  = "There is no question to answer right now."
)

// Counter renders "Question i/N" for the question on screen.
func Counter(st entities.QuizState) string {
	return fmt.Sprintf("Question %d/%d", st.CurrentIndex+1, st.Total())
}

// Feedback returns the inline feedback line, empty while no answer is shown.
func Feedback(st entities.QuizState) string {
	switch st.IsCorrect {
	case entities.CorrectnessCorrect:
		return MsgCorrect
	case entities.CorrectnessIncorrect:
		return MsgIncorrect
	default:
		return ""
	}
}

// Score renders the final summary line.
func Score(st entities.QuizState) string {
	return fmt.Sprintf("Your score: %d / %d", st.Score, st.Total())
}

// LoadError renders the load failure for display.
func LoadError(st entities.QuizState) string {
	if st.LoadError == "" {
		return MsgLoadFailed
	}
	return MsgLoadFailed + ": " + st.LoadError
}
