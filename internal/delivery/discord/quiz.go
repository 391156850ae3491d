package discord

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/aliskhannn/trivia-quiz/internal/delivery/view"
	"github.com/aliskhannn/trivia-quiz/internal/domain/entities"
	"github.com/aliskhannn/trivia-quiz/internal/service"
)

// pushState posts a new message for each new question, the final score and
// load failures. Answer feedback updates the question message in place.
func (b *Bot) pushState(channelID string) service.Listener {
	return func(_ *service.Session, st entities.QuizState) {
		key, ok := viewKey(st)
		if !ok || !b.markRendered(channelID, key) {
			return
		}
		b.send(channelID, renderState(st))
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

func renderState(st entities.QuizState) *discordgo.MessageSend {
	switch st.Phase() {
	case entities.PhaseInProgress:
		q, _ := st.Current()
		return &discordgo.MessageSend{
			Content:    formatQuestion(st, q),
			Components: answerComponents(st, q),
		}
	case entities.PhaseCompleted:
		return &discordgo.MessageSend{
			Content:    formatSummary(st),
			Components: restartComponents(),
		}
	default:
		return &discordgo.MessageSend{
			Content:    "⚠️ " + view.LoadError(st),
			Components: restartComponents(),
		}
	}
}

func (b *Bot) handleComponent(i *discordgo.Interaction, customID string) {
	if customID == restartID {
		b.respond(i, &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate})
		if err := b.startQuiz(i.ChannelID); err != nil {
			b.logger.Error("restart quiz", zap.String("channel_id", i.ChannelID), zap.Error(err))
			b.sendText(i.ChannelID, msgInternalError)
		}
		return
	}

	ans, err := parseAnswerID(customID)
	if err != nil {
		b.logger.Warn("invalid quiz component", zap.Error(err))
		b.ephemeral(i, msgStaleQuestion)
		return
	}

	sess, ok := b.sessions.Get(sessionKey(i.ChannelID))
	if !ok {
		b.ephemeral(i, msgSessionExpired)
		return
	}

	st := sess.Snapshot()
	q, ok := st.Current()
	if !ok || st.Epoch != ans.Epoch || st.CurrentIndex != ans.Index || ans.Option >= len(q.Options) {
		b.ephemeral(i, msgStaleQuestion)
		return
	}

	next, err := sess.Submit(q.Options[ans.Option])
	switch {
	case errors.Is(err, service.ErrAnswerPending):
		b.ephemeral(i, view.MsgAnswerLater)
		return
	case errors.Is(err, service.ErrNotInProgress), errors.Is(err, service.ErrSessionClosed):
		b.ephemeral(i, view.MsgNotRunning)
		return
	case err != nil:
		b.logger.Error("submit answer", zap.String("channel_id", i.ChannelID), zap.Error(err))
		b.ephemeral(i, msgInternalError)
		return
	}

	b.respond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    formatAnswered(next, q),
			Components: answeredComponents(next, q),
		},
	})
}

func (b *Bot) ephemeral(i *discordgo.Interaction, text string) {
	b.respond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
