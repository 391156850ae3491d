package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/trivia-quiz/internal/delivery/view"
	"github.com/aliskhannn/trivia-quiz/internal/service"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	var toast string

	if cb.Message == nil || cb.Message.Chat == nil {
		h.answerCallback(cb.ID, "")
		return
	}
	chatID := cb.Message.Chat.ID

	data := decodeCallback(cb.Data)
	switch {
	case data.Action != actionQuiz:
		h.logger.Debug("unknown callback", zap.String("data", cb.Data))
	case len(data.Params) == 1 && (data.Params[0] == quizStart || data.Params[0] == quizRestart):
		_ = h.withErrorHandling(cb.Data, h.quizHandler)(ctx, chatID)
	default:
		toast = h.handleAnswerCallback(cb, data)
	}

	// Remove the user's "clock".
	h.answerCallback(cb.ID, toast)
}

// handleAnswerCallback submits the tapped option and edits the question
// message to show feedback. It returns the toast text for the callback answer.
func (h *Handler) handleAnswerCallback(cb *tgbotapi.CallbackQuery, data callbackData) string {
	chatID := cb.Message.Chat.ID

	ans, err := parseAnswerCallback(data)
	if err != nil {
		h.logger.Warn("invalid quiz callback", zap.Error(err))
		return ""
	}

	sess, ok := h.sessions.Get(sessionKey(chatID))
	if !ok {
		return msgSessionExpired
	}

	st := sess.Snapshot()
	q, ok := st.Current()
	if !ok || st.Epoch != ans.Epoch || st.CurrentIndex != ans.Index || ans.Option >= len(q.Options) {
		return msgStaleQuestion
	}

	next, err := sess.Submit(q.Options[ans.Option])
	switch {
	case errors.Is(err, service.ErrAnswerPending):
		return view.MsgAnswerLater
	case errors.Is(err, service.ErrNotInProgress), errors.Is(err, service.ErrSessionClosed):
		return view.MsgNotRunning
	case err != nil:
		h.logger.Error("submit answer",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		return msgInternalError
	}

	edit := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID, formatAnswered(next, q))
	edit.ParseMode = tgbotapi.ModeHTML
	h.send(edit)

	return view.Feedback(next)
}

func (h *Handler) answerCallback(id, text string) {
	answer := tgbotapi.NewCallback(id, text)
	if _, err := h.bot.Request(answer); err != nil {
		h.logger.Warn("callback answer error", zap.Error(err))
	}
}
