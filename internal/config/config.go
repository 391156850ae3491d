package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrUnknownResultsDriver        = errors.New("unknown results driver")
)

// Results drivers.
const (
	DriverNone     = "none"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string  `mapstructure:"env"`      // current application environment (local, dev, production)
	TelegramAPIToken string  `mapstructure:"-"`        // Telegram API token loaded from environment, empty disables the bot
	DiscordToken     string  `mapstructure:"-"`        // Discord bot token loaded from environment, empty disables the bot
	HTTP             HTTP    `mapstructure:"http"`     // web front-end section
	Trivia           Trivia  `mapstructure:"trivia"`   // question provider section
	Quiz             Quiz    `mapstructure:"quiz"`     // quiz timing section
	Results          Results `mapstructure:"results"`  // score history section
	DB               DB      `mapstructure:"database"` // postgres pool section
}

// HTTP contains web server parameters.
type HTTP struct {
	Addr         string        `mapstructure:"addr"`          // listen address
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`  // per-request read timeout
	WriteTimeout time.Duration `mapstructure:"write_timeout"` // per-request write timeout
}

// Trivia selects the fixed question batch.
type Trivia struct {
	APIURL     string        `mapstructure:"api_url"`    // Open Trivia DB endpoint
	Amount     int           `mapstructure:"amount"`     // questions per batch
	Category   int           `mapstructure:"category"`   // provider category id
	Difficulty string        `mapstructure:"difficulty"` // easy, medium or hard
	Type       string        `mapstructure:"type"`       // multiple or boolean
	Timeout    time.Duration `mapstructure:"timeout"`    // outbound request timeout
}

// Quiz contains state machine timing.
type Quiz struct {
	FeedbackDelay time.Duration `mapstructure:"feedback_delay"` // time feedback stays on screen
	SessionTTL    time.Duration `mapstructure:"session_ttl"`    // idle time before a session is evicted
	SweepInterval time.Duration `mapstructure:"sweep_interval"` // how often idle sessions are swept
}

// Results selects where completed scores go.
type Results struct {
	Driver     string `mapstructure:"driver"`      // none, postgres or sqlite
	SQLitePath string `mapstructure:"sqlite_path"` // database file for the sqlite driver
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Load reads configuration from .env, config files and environment variables.
func Load() (*Config, error) {
	// A missing .env is fine, real environment wins anyway.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("discord_token", "DISCORD_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", "5s")
	v.SetDefault("http.write_timeout", "10s")

	v.SetDefault("trivia.api_url", "https://opentdb.com/api.php")
	v.SetDefault("trivia.amount", 15)
	v.SetDefault("trivia.category", 11)
	v.SetDefault("trivia.difficulty", "hard")
	v.SetDefault("trivia.type", "multiple")
	v.SetDefault("trivia.timeout", "10s")

	v.SetDefault("quiz.feedback_delay", "1s")
	v.SetDefault("quiz.session_ttl", "30m")
	v.SetDefault("quiz.sweep_interval", "1m")

	v.SetDefault("results.driver", DriverNone)
	v.SetDefault("results.sqlite_path", "./results.db")

	v.SetDefault("database.max_connections", 5)
	v.SetDefault("database.max_conn_lifetime", "30s")
}

func fromViper(v *viper.Viper) (*Config, error) {
	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	cfg.DiscordToken = v.GetString("discord_token")
	cfg.DB.URL = v.GetString("database_url")

	switch cfg.Results.Driver {
	case DriverNone, DriverSQLite:
	case DriverPostgres:
		if cfg.DB.URL == "" {
			return nil, fmt.Errorf("results driver %q: %w", DriverPostgres, ErrMissingEnvironmentVariables)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownResultsDriver, cfg.Results.Driver)
	}

	return &cfg, nil
}
