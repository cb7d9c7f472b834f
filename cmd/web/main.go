package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/fitlogapp/fitlog/internal/advisor"
	"github.com/fitlogapp/fitlog/internal/envstruct"
	"github.com/fitlogapp/fitlog/internal/errors"
	"github.com/fitlogapp/fitlog/internal/logging"
	"github.com/fitlogapp/fitlog/internal/sqlite"
	"github.com/fitlogapp/fitlog/internal/workout"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	workoutService *workout.Service
	advisor        *advisor.Service
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"FITLOG_ADDR" envDefault:"localhost:8080"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"FITLOG_SQLITE_URL" envDefault:"./fitlog.sqlite3"`
	// OpenAIAPIKey enables the AI-backed recovery and chat endpoints. When
	// empty, those endpoints answer from deterministic local fallbacks.
	OpenAIAPIKey string `env:"OPENAI_API_KEY" envDefault:""`
	// OpenAIBaseURL overrides the OpenAI API endpoint. Used by tests.
	OpenAIBaseURL string `env:"FITLOG_OPENAI_BASE_URL" envDefault:""`
	// AIModel is the chat completion model. Empty selects the advisor's default.
	AIModel string `env:"FITLOG_AI_MODEL" envDefault:""`
	// AITemperature is the sampling temperature for AI completions.
	AITemperature float64 `env:"FITLOG_AI_TEMPERATURE" envDefault:"0.7"`
	// AIMaxTokens bounds the AI completion length.
	AIMaxTokens int64 `env:"FITLOG_AI_MAX_TOKENS" envDefault:"500"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	sessionManager := initializeSessionManager(db)

	advisorService := advisor.NewService(advisor.Config{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.AIModel,
		Temperature: cfg.AITemperature,
		MaxTokens:   cfg.AIMaxTokens,
	}, logger)
	if cfg.OpenAIAPIKey == "" {
		logger.LogAttrs(ctx, slog.LevelInfo, "AI advisor disabled, answering from local fallbacks")
	}

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		workoutService: workout.NewService(db, logger),
		advisor:        advisorService,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr, app.routes()); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func initializeSessionManager(dbs *sqlite.Database) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = 30 * 24 * time.Hour                                           //nolint:mnd // month
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
