package telegram

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type HandlerFunc func(ctx context.Context, chatID int64) error

// withErrorHandling runs fn for the named command or callback. A failure is
// logged with the command and reported to the chat, and the error is returned
// so callers may inspect it.
func (h *Handler) withErrorHandling(command string, fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		start := time.Now()

		err := fn(ctx, chatID)
		if err != nil {
			h.logger.Error("command failed",
				zap.String("command", command),
				zap.Int64("chat_id", chatID),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err),
			)
			h.sendError(chatID, msgInternalError)
			return err
		}

		h.logger.Debug("command handled",
			zap.String("command", command),
			zap.Int64("chat_id", chatID),
			zap.Duration("elapsed", time.Since(start)),
		)
		return nil
	}
}
