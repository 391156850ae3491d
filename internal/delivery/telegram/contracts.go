package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/trivia-quiz/internal/service"
)

// BotAPI is the subset of *tgbotapi.BotAPI the handler uses.
type BotAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Sessions interface {
	Acquire(key, frontend string, listener service.Listener) (*service.Session, bool, error)
	Get(key string) (*service.Session, bool)
}
