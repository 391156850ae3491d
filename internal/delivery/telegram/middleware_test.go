package telegram

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithErrorHandlingLogsCommand(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	bot := newFakeBot()
	h := NewHandler(bot, nil, zap.New(core))

	boom := errors.New("boom")
	err := h.withErrorHandling("/quiz", func(context.Context, int64) error {
		return boom
	})(context.Background(), 42)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}

	failed := logs.FilterMessage("command failed").All()
	if len(failed) != 1 {
		t.Fatalf("expected one failure entry, got %d", len(failed))
	}
	fields := failed[0].ContextMap()
	if fields["command"] != "/quiz" || fields["chat_id"] != int64(42) {
		t.Fatalf("unexpected fields: %v", fields)
	}

	msgs := bot.messages()
	if len(msgs) != 1 || msgs[0].Text != msgInternalError {
		t.Fatalf("expected internal error message, got %+v", msgs)
	}
}

func TestWithErrorHandlingPassesThroughSuccess(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	bot := newFakeBot()
	h := NewHandler(bot, nil, zap.New(core))

	err := h.withErrorHandling("quiz:start", func(context.Context, int64) error {
		return nil
	})(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logs.FilterMessage("command failed").Len() != 0 {
		t.Fatalf("success must not log a failure")
	}
	if len(bot.messages()) != 0 {
		t.Fatalf("success must not message the chat")
	}
}
