package discord

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/aliskhannn/trivia-quiz/internal/delivery/view"
	"github.com/aliskhannn/trivia-quiz/internal/domain/entities"
)

const (
	answerPrefix   = "quiz"
	restartID      = "quiz:restart"
	maxButtonLabel = 80
)

var errBadCustomID = errors.New("malformed component id")

type answerID struct {
	Epoch  int
	Index  int
	Option int
}

func buildAnswerID(epoch, index, option int) string {
	return fmt.Sprintf("%s:%d:%d:%d", answerPrefix, epoch, index, option)
}

func parseAnswerID(id string) (answerID, error) {
	parts := strings.Split(id, ":")
	if len(parts) != 4 || parts[0] != answerPrefix {
		return answerID{}, fmt.Errorf("%w: %q", errBadCustomID, id)
	}

	nums := make([]int, 3)
	for i, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return answerID{}, fmt.Errorf("%w: %q", errBadCustomID, id)
		}
		nums[i] = n
	}
	return answerID{Epoch: nums[0], Index: nums[1], Option: nums[2]}, nil
}

func label(s string) string {
	r := []rune(s)
	if len(r) <= maxButtonLabel {
		return s
	}
	return string(r[:maxButtonLabel-1]) + "…"
}

// answerComponents lays the options out in two rows of two.
func answerComponents(st entities.QuizState, q entities.Question) []discordgo.MessageComponent {
	return buttonRows(q.Options, func(i int, opt string) discordgo.Button {
		return discordgo.Button{
			Label:    label(opt),
			Style:    discordgo.PrimaryButton,
			CustomID: buildAnswerID(st.Epoch, st.CurrentIndex, i),
		}
	})
}

// answeredComponents disables every option and colours the correct and chosen ones.
func answeredComponents(st entities.QuizState, q entities.Question) []discordgo.MessageComponent {
	return buttonRows(q.Options, func(i int, opt string) discordgo.Button {
		style := discordgo.SecondaryButton
		switch {
		case opt == q.CorrectAnswer:
			style = discordgo.SuccessButton
		case opt == st.SelectedAnswer:
			style = discordgo.DangerButton
		}
		return discordgo.Button{
			Label:    label(opt),
			Style:    style,
			CustomID: buildAnswerID(st.Epoch, st.CurrentIndex, i),
			Disabled: true,
		}
	})
}

func buttonRows(options []string, build func(i int, opt string) discordgo.Button) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	for i := 0; i < len(options); i += 2 {
		row := discordgo.ActionsRow{}
		for j := i; j < i+2 && j < len(options); j++ {
			row.Components = append(row.Components, build(j, options[j]))
		}
		rows = append(rows, row)
	}
	return rows
}

func restartComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: view.MsgRestart, Style: discordgo.PrimaryButton, CustomID: restartID},
		}},
	}
}
