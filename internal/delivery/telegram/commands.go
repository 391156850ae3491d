package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/trivia-quiz/internal/delivery/view"
	"github.com/aliskhannn/trivia-quiz/internal/domain/entities"
	"github.com/aliskhannn/trivia-quiz/internal/service"
)

// quizHandler starts a quiz for the chat, restarting a running one.
func (h *Handler) quizHandler(_ context.Context, chatID int64) error {
	h.send(newHTMLMessage(chatID, view.MsgLoading))
	h.markRendered(chatID, "")

	sess, created, err := h.sessions.Acquire(sessionKey(chatID), frontend, h.pushState(chatID))
	if err != nil {
		return fmt.Errorf("acquire session: %w", err)
	}
	if created {
		return nil
	}

	if _, err := sess.Restart(); err != nil {
		return fmt.Errorf("restart session: %w", err)
	}
	return nil
}

// pushState sends a new message whenever the chat should see a new question,
// the final score or a load failure. Feedback is edited in place by the
// callback handler instead.
func (h *Handler) pushState(chatID int64) service.Listener {
	return func(_ *service.Session, st entities.QuizState) {
		key, ok := viewKey(st)
		if !ok || !h.markRendered(chatID, key) {
			return
		}
		h.send(renderState(chatID, st))
	}
}

func viewKey(st entities.QuizState) (string, bool) {
	switch st.Phase() {
	case entities.PhaseInProgress:
		if st.SelectedAnswer != "" {
			return "", false
		}
		return fmt.Sprintf("q:%d:%d", st.Epoch, st.CurrentIndex), true
	case entities.PhaseCompleted:
		return fmt.Sprintf("done:%d", st.Epoch), true
	case entities.PhaseLoadFailed:
		return fmt.Sprintf("fail:%d", st.Epoch), true
	default:
		return "", false
	}
}

func renderState(chatID int64, st entities.QuizState) tgbotapi.MessageConfig {
	switch st.Phase() {
	case entities.PhaseInProgress:
		q, _ := st.Current()
		msg := newHTMLMessage(chatID, formatQuestion(st, q))
		msg.ReplyMarkup = buildAnswerKeyboard(st.Epoch, st.CurrentIndex, q.Options)
		return msg
	case entities.PhaseCompleted:
		msg := newHTMLMessage(chatID, formatSummary(st))
		msg.ReplyMarkup = buildQuizResultKeyboard()
		return msg
	default:
		msg := newHTMLMessage(chatID, formatLoadError(st))
		msg.ReplyMarkup = buildQuizResultKeyboard()
		return msg
	}
}
