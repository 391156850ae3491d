package config

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newViper(t *testing.T, overrides map[string]any) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := fromViper(newViper(t, nil))
	if err != nil {
		t.Fatalf("fromViper: %v", err)
	}

	if cfg.Trivia.Amount != 15 || cfg.Trivia.Category != 11 {
		t.Fatalf("unexpected batch: %+v", cfg.Trivia)
	}
	if cfg.Trivia.Difficulty != "hard" || cfg.Trivia.Type != "multiple" {
		t.Fatalf("unexpected batch kind: %+v", cfg.Trivia)
	}
	if cfg.Quiz.FeedbackDelay != time.Second {
		t.Fatalf("feedback delay = %v, want 1s", cfg.Quiz.FeedbackDelay)
	}
	if cfg.Quiz.SessionTTL != 30*time.Minute || cfg.Quiz.SweepInterval != time.Minute {
		t.Fatalf("unexpected session timing: %+v", cfg.Quiz)
	}
	if cfg.Results.Driver != DriverNone {
		t.Fatalf("results driver = %q, want none", cfg.Results.Driver)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("http addr = %q", cfg.HTTP.Addr)
	}
}

func TestSecretsComeFromBoundKeys(t *testing.T) {
	cfg, err := fromViper(newViper(t, map[string]any{
		"telegram_api_token": "tg",
		"discord_token":      "dc",
		"database_url":       "postgres://localhost/quiz",
		"results.driver":     DriverPostgres,
	}))
	if err != nil {
		t.Fatalf("fromViper: %v", err)
	}
	if cfg.TelegramAPIToken != "tg" || cfg.DiscordToken != "dc" {
		t.Fatalf("tokens not loaded: %+v", cfg)
	}
	if dsn, err := cfg.DB.DSN(); err != nil || dsn != "postgres://localhost/quiz" {
		t.Fatalf("dsn = %q, err = %v", dsn, err)
	}
}

func TestResultsDriverValidation(t *testing.T) {
	tests := []struct {
		name    string
		set     map[string]any
		wantErr error
	}{
		{name: "postgres without url", set: map[string]any{"results.driver": DriverPostgres}, wantErr: ErrMissingEnvironmentVariables},
		{name: "unknown driver", set: map[string]any{"results.driver": "mongo"}, wantErr: ErrUnknownResultsDriver},
		{name: "sqlite", set: map[string]any{"results.driver": DriverSQLite}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fromViper(newViper(t, tc.set))
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}
