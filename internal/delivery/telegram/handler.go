package telegram

import (
	"context"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	frontend  = "telegram"
	keyPrefix = "tg:"
)

type Handler struct {
	bot      BotAPI
	logger   *zap.Logger
	sessions Sessions

	mu       sync.Mutex
	rendered map[int64]string // chat id -> last pushed view
}

func NewHandler(bot BotAPI, sessions Sessions, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		bot:      bot,
		logger:   logger.With(zap.String("frontend", frontend)),
		sessions: sessions,
		rendered: make(map[int64]string),
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.Chat == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	chatID := update.Message.Chat.ID
	h.logger.Debug("update received",
		zap.Int64("chat_id", chatID),
		zap.String("text", update.Message.Text),
	)

	if !update.Message.IsCommand() {
		h.send(newHTMLMessage(chatID, msgUnknownCommand))
		return
	}

	switch update.Message.Command() {
	case "start":
		msg := newHTMLMessage(chatID, msgWelcome)
		msg.ReplyMarkup = buildStartKeyboard()
		h.send(msg)

	case "quiz":
		_ = h.withErrorHandling("/quiz", h.quizHandler)(ctx, chatID)

	case "help":
		h.send(newHTMLMessage(chatID, msgHelp))

	default:
		h.send(newHTMLMessage(chatID, msgUnknownCommand))
	}
}

// markRendered records view for chatID and reports whether it differs from the last one.
func (h *Handler) markRendered(chatID int64, view string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rendered[chatID] == view {
		return false
	}
	h.rendered[chatID] = view
	return true
}

// Forget drops the render state of the chat owning an evicted session key.
// Keys of other front-ends are ignored.
func (h *Handler) Forget(key string) {
	raw, ok := strings.CutPrefix(key, keyPrefix)
	if !ok {
		return
	}
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return
	}

	h.mu.Lock()
	delete(h.rendered, chatID)
	h.mu.Unlock()
}

func sessionKey(chatID int64) string {
	return keyPrefix + strconv.FormatInt(chatID, 10)
}

func (h *Handler) sendError(chatID int64, err string) {
	msg := newHTMLMessage(chatID, err)
	h.send(msg)
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}
