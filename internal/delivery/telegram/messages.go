// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/aliskhannn/trivia-quiz/internal/delivery/view"
	"github.com/aliskhannn/trivia-quiz/internal/domain/entities"
)

const (
	msgWelcome = "👋 <b>Welcome to Trivia Quiz!</b>\n\n" +
		"Fifteen hard trivia questions, four options each.\n" +
		"Tap an answer, see if you got it right, and the next question follows a second later.\n\n" +
		"Send /quiz or press the button below to begin."
	msgHelp = "/quiz - start a new quiz (restarts a running one)\n/help - show this message"

	msgInternalError  = "Something went wrong. Please try again later."
	msgUnknownCommand = "Unknown command. Send /quiz to play or /help for the list of commands."
	msgSessionExpired = "This quiz has expired. Send /quiz to start a new one."
	msgStaleQuestion  = "That question is no longer active."
)

func formatQuestion(st entities.QuizState, q entities.Question) string {
	return fmt.Sprintf("<b>%s</b>\n\n%s", view.Counter(st), html.EscapeString(q.Text))
}

// formatAnswered renders the question with the player's answer and feedback.
func formatAnswered(st entities.QuizState, q entities.Question) string {
	var b strings.Builder
	b.WriteString(formatQuestion(st, q))
	b.WriteString("\n\nYour answer: ")
	b.WriteString(html.EscapeString(st.SelectedAnswer))
	b.WriteString("\n")

	if st.IsCorrect == entities.CorrectnessCorrect {
		b.WriteString("✅ " + view.MsgCorrect)
	} else {
		b.WriteString("❌ " + view.MsgIncorrect)
		b.WriteString("\nCorrect answer: <b>" + html.EscapeString(q.CorrectAnswer) + "</b>")
	}
	return b.String()
}

func formatSummary(st entities.QuizState) string {
	return "🏁 <b>" + view.Score(st) + "</b>"
}

func formatLoadError(st entities.QuizState) string {
	return "⚠️ " + html.EscapeString(view.LoadError(st))
}
