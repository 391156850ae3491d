package discord

import (
	"fmt"
	"strings"

	"github.com/aliskhannn/trivia-quiz/internal/delivery/view"
	"github.com/aliskhannn/trivia-quiz/internal/domain/entities"
)

const (
	msgLoading        = view.MsgLoading
	msgInternalError  = "Something went wrong. Please try again later."
	msgSessionExpired = "This quiz has expired. Use `!!quiz start` to play again."
	msgStaleQuestion  = "That question is no longer active."
)

var msgHelp = "**Trivia Quiz Help**\n" +
	"- **!!quiz start**: Start a quiz in this channel.\n" +
	"- **!!quiz restart**: Throw away the current quiz and load fresh questions.\n" +
	"- **!!quiz help**: Show this help message.\n" +
	"Answer by pressing one of the four buttons under a question."

func formatQuestion(st entities.QuizState, q entities.Question) string {
	return fmt.Sprintf("**%s**\n%s", view.Counter(st), escapeMarkdown(q.Text))
}

func formatAnswered(st entities.QuizState, q entities.Question) string {
	text := formatQuestion(st, q) + "\n\n"
	if st.IsCorrect == entities.CorrectnessCorrect {
		return text + "✅ " + view.MsgCorrect
	}
	return text + "❌ " + view.MsgIncorrect + " The answer was **" + escapeMarkdown(q.CorrectAnswer) + "**."
}

func formatSummary(st entities.QuizState) string {
	return "🏁 **" + view.Score(st) + "**"
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"~", `\~`,
	"`", "\\`",
	"|", `\|`,
	">", `\>`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
