package entities

import (
	"errors"
	"fmt"
)

// OptionsPerQuestion is the number of answer options every multiple-choice question carries.
const OptionsPerQuestion = 4

var (
	ErrInvalidOptionCount = errors.New("question must have exactly 4 options")
	ErrDuplicateOption    = errors.New("question options must be unique")
	ErrMissingCorrect     = errors.New("correct answer is not one of the options")
)

// Question is one trivia item in display order.
type Question struct {
	Text          string   // decoded question text
	Options       []string // decoded options, already shuffled; index order is display order
	CorrectAnswer string   // decoded correct option, always an element of Options
}

// NewQuestion validates the options and returns an immutable question value.
func NewQuestion(text string, options []string, correct string) (Question, error) {
	if len(options) != OptionsPerQuestion {
		return Question{}, fmt.Errorf("%w: got %d", ErrInvalidOptionCount, len(options))
	}

	seen := make(map[string]struct{}, len(options))
	hasCorrect := false
	for _, opt := range options {
		if _, dup := seen[opt]; dup {
			return Question{}, fmt.Errorf("%w: %q", ErrDuplicateOption, opt)
		}
		seen[opt] = struct{}{}
		if opt == correct {
			hasCorrect = true
		}
	}
	if !hasCorrect {
		return Question{}, ErrMissingCorrect
	}

	opts := make([]string, len(options))
	copy(opts, options)

	return Question{
		Text:          text,
		Options:       opts,
		CorrectAnswer: correct,
	}, nil
}

// IsCorrect reports whether option matches the correct answer exactly.
func (q Question) IsCorrect(option string) bool {
	return option == q.CorrectAnswer
}

// HasOption reports whether option is one of the displayed options.
func (q Question) HasOption(option string) bool {
	for _, opt := range q.Options {
		if opt == option {
			return true
		}
	}
	return false
}
