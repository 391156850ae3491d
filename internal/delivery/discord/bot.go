package discord

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/aliskhannn/trivia-quiz/internal/service"
)

const (
	frontend      = "discord"
	commandPrefix = "!!quiz"
	keyPrefix     = "dc:"
)

// Discord is the subset of *discordgo.Session used to talk to channels.
type Discord interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

type Sessions interface {
	Acquire(key, frontend string, listener service.Listener) (*service.Session, bool, error)
	Get(key string) (*service.Session, bool)
}

// Bot runs one quiz per channel, driven by !!quiz commands and answer buttons.
type Bot struct {
	gateway  *discordgo.Session
	api      Discord
	sessions Sessions
	logger   *zap.Logger

	mu       sync.Mutex
	rendered map[string]string // channel id -> last pushed view
}

func New(token string, sessions Sessions, logger *zap.Logger) (*Bot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	b := newBot(s, sessions, logger)
	b.gateway = s

	s.AddHandler(b.onMessage)
	s.AddHandler(b.onInteraction)
	return b, nil
}

func newBot(api Discord, sessions Sessions, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		api:      api,
		sessions: sessions,
		logger:   logger.With(zap.String("frontend", frontend)),
		rendered: make(map[string]string),
	}
}

// Run opens the gateway and keeps it open until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.gateway.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	b.logger.Info("discord bot started")

	<-ctx.Done()

	b.logger.Info("discord bot stopped")
	return b.gateway.Close()
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || (s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}
	b.handleCommand(m.ChannelID, m.Content)
}

func (b *Bot) onInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	b.handleComponent(i.Interaction, i.MessageComponentData().CustomID)
}

func (b *Bot) handleCommand(channelID, content string) {
	fields := strings.Fields(content)
	if len(fields) == 0 || fields[0] != commandPrefix {
		return
	}

	sub := "help"
	if len(fields) > 1 {
		sub = strings.ToLower(fields[1])
	}

	b.logger.Debug("command received",
		zap.String("channel_id", channelID),
		zap.String("command", sub),
	)

	switch sub {
	case "start", "restart":
		if err := b.startQuiz(channelID); err != nil {
			b.logger.Error("start quiz", zap.String("channel_id", channelID), zap.Error(err))
			b.sendText(channelID, msgInternalError)
		}
	default:
		b.sendText(channelID, msgHelp)
	}
}

// startQuiz starts a quiz in the channel, restarting a running one.
func (b *Bot) startQuiz(channelID string) error {
	b.sendText(channelID, msgLoading)
	b.markRendered(channelID, "")

	sess, created, err := b.sessions.Acquire(sessionKey(channelID), frontend, b.pushState(channelID))
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

func (b *Bot) markRendered(channelID, view string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.rendered[channelID] == view {
		return false
	}
	b.rendered[channelID] = view
	return true
}

// Forget drops the render state of the channel owning an evicted session key.
func (b *Bot) Forget(key string) {
	channelID, ok := strings.CutPrefix(key, keyPrefix)
	if !ok {
		return
	}

	b.mu.Lock()
	delete(b.rendered, channelID)
	b.mu.Unlock()
}

func sessionKey(channelID string) string {
	return keyPrefix + channelID
}

func (b *Bot) sendText(channelID, text string) {
	b.send(channelID, &discordgo.MessageSend{Content: text})
}

func (b *Bot) send(channelID string, msg *discordgo.MessageSend) {
	if _, err := b.api.ChannelMessageSendComplex(channelID, msg); err != nil {
		b.logger.Error("failed to send discord message",
			zap.String("channel_id", channelID),
			zap.Error(err),
		)
	}
}

func (b *Bot) respond(i *discordgo.Interaction, resp *discordgo.InteractionResponse) {
	if err := b.api.InteractionRespond(i, resp); err != nil {
		b.logger.Warn("interaction respond error", zap.Error(err))
	}
}
