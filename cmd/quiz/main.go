package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/trivia-quiz/internal/config"
	"github.com/aliskhannn/trivia-quiz/internal/delivery/discord"
	"github.com/aliskhannn/trivia-quiz/internal/delivery/telegram"
	"github.com/aliskhannn/trivia-quiz/internal/delivery/web"
	"github.com/aliskhannn/trivia-quiz/internal/infra/opentdb"
	"github.com/aliskhannn/trivia-quiz/internal/infra/postgres"
	"github.com/aliskhannn/trivia-quiz/internal/infra/postgres/repository"
	"github.com/aliskhannn/trivia-quiz/internal/infra/sqlite"
	"github.com/aliskhannn/trivia-quiz/internal/logger"
	"github.com/aliskhannn/trivia-quiz/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("quiz stopped with error", zap.Error(err))
	}
	lg.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	recorder, closeRecorder, err := newRecorder(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer closeRecorder()

	client := opentdb.NewClient(cfg.Trivia.APIURL, opentdb.Params{
		Amount:     cfg.Trivia.Amount,
		Category:   cfg.Trivia.Category,
		Difficulty: cfg.Trivia.Difficulty,
		Type:       cfg.Trivia.Type,
	}, cfg.Trivia.Timeout)
	loader := service.NewQuestionLoader(client, nil, lg.Named("loader"))

	manager := service.NewSessionManager(loader, service.RealScheduler, cfg.Quiz.FeedbackDelay, recorder, lg.Named("sessions"))
	defer manager.Close()

	janitor := service.NewJanitor(manager, cfg.Quiz.SessionTTL, cfg.Quiz.SweepInterval, lg.Named("janitor"))

	server := web.NewServer(web.Config{
		Addr:         cfg.HTTP.Addr,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		SessionTTL:   cfg.Quiz.SessionTTL,
	}, manager, lg.Named("web"))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(ctx) })
	g.Go(func() error { return janitor.Start(ctx) })

	if cfg.TelegramAPIToken != "" {
		handler, err := newTelegram(cfg.TelegramAPIToken, manager, lg.Named("telegram"))
		if err != nil {
			return err
		}
		manager.OnEvict(handler.Forget)
		g.Go(func() error { return handler.Run(ctx) })
	} else {
		lg.Info("telegram disabled, TELEGRAM_API_TOKEN is not set")
	}

	if cfg.DiscordToken != "" {
		bot, err := discord.New(cfg.DiscordToken, manager, lg.Named("discord"))
		if err != nil {
			return err
		}
		manager.OnEvict(bot.Forget)
		g.Go(func() error { return bot.Run(ctx) })
	} else {
		lg.Info("discord disabled, DISCORD_TOKEN is not set")
	}

	return g.Wait()
}

func newTelegram(token string, manager *service.SessionManager, lg *zap.Logger) (*telegram.Handler, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}

	// Set commands.
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Show the welcome message"},
		{Command: "quiz", Description: "Start a new quiz"},
		{Command: "help", Description: "Help"},
	}
	if _, err := bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	lg.Info("authorized on telegram", zap.String("account", bot.Self.UserName))
	return telegram.NewHandler(bot, manager, lg), nil
}

// newRecorder builds the score history backend selected by results.driver.
func newRecorder(ctx context.Context, cfg *config.Config, lg *zap.Logger) (service.ResultRecorder, func(), error) {
	switch cfg.Results.Driver {
	case config.DriverPostgres:
		dsn, err := cfg.DB.DSN()
		if err != nil {
			return nil, nil, err
		}
		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        cfg.DB.MaxConnections,
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			return nil, nil, err
		}

		repo := repository.NewResultRepository(pool, postgres.NewTransactor(pool))
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		lg.Info("recording results in postgres")
		return repo, pool.Close, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.Results.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		lg.Info("recording results in sqlite", zap.String("path", cfg.Results.SQLitePath))
		return store, func() { _ = store.Close() }, nil

	default:
		return service.NopRecorder{}, func() {}, nil
	}
}
