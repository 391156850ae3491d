package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionQuiz = "quiz"
)

// Quiz sub-actions.
const (
	quizStart   = "start"
	quizRestart = "restart"
)

var errBadCallback = errors.New("malformed callback data")

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	if len(parts) == 0 {
		return callbackData{Raw: data}
	}

	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// answerCallback identifies one option of one question in one quiz run.
type answerCallback struct {
	Epoch  int
	Index  int
	Option int // position in the options list
}

// buildQuizAnswerCallback builds callback data for answering a quiz question.
// Options are referenced by position since their text may exceed the 64 byte limit.
func buildQuizAnswerCallback(epoch, index, option int) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{
			strconv.Itoa(epoch),
			strconv.Itoa(index),
			strconv.Itoa(option),
		},
	}.encode()
}

// buildQuizStartCallback builds callback data for starting a quiz session.
func buildQuizStartCallback() string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizStart},
	}.encode()
}

func buildQuizRestartCallback() string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizRestart},
	}.encode()
}

func parseAnswerCallback(cd callbackData) (answerCallback, error) {
	if cd.Action != actionQuiz || len(cd.Params) != 3 {
		return answerCallback{}, fmt.Errorf("%w: %q", errBadCallback, cd.Raw)
	}

	nums := make([]int, 3)
	for i, p := range cd.Params {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return answerCallback{}, fmt.Errorf("%w: %q", errBadCallback, cd.Raw)
		}
		nums[i] = n
	}

	return answerCallback{Epoch: nums[0], Index: nums[1], Option: nums[2]}, nil
}
