package logger

import (
	"go.uber.org/zap"

	"github.com/aliskhannn/trivia-quiz/internal/config"
)

// New returns a production JSON logger in production and a console logger elsewhere.
func New(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Env == "production" {
		return zap.NewProduction()
	}

	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return l.With(zap.String("env", cfg.Env)), nil
}
