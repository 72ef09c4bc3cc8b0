package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizlink/internal/app"
	"quizlink/internal/config"
	"quizlink/internal/generate"
	"quizlink/internal/infra/memory"
	"quizlink/internal/infra/postgres"
	redisinfra "quizlink/internal/infra/redis"
	transport "quizlink/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	// Storage: Postgres when configured, in-memory otherwise. The memory
	// store keeps local development free of external services.
	var store interface {
		app.QuizStore
		app.AttemptStore
		redisinfra.SlugLoader
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = postgres.NewStore(pool)
		log.Info("using postgres storage")
	} else {
		store = memory.NewStore()
		log.Info("using in-memory storage")
	}

	// Slug lookups on the join path are cached; Redis when configured, an
	// in-process TTL cache otherwise.
	quizTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)
	var reader app.QuizReader
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		reader = redisinfra.NewQuizCache(client, store, quizTTL)
		log.Info("using redis quiz cache", slog.String("addr", cfg.Redis.Addr))
	} else {
		reader = memory.NewQuizCache(store, quizTTL)
	}

	groqTimeout := config.TTLDuration(cfg.Groq.Timeout, 30*time.Second)
	client := generate.NewClient(&http.Client{Timeout: groqTimeout}, cfg.Groq.URL, cfg.Groq.APIKey)
	gen := generate.NewService(log, client)
	if !client.Configured() {
		log.Warn("GROQ_API_KEY not set, question generation will use sample questions")
	}
	if cfg.Auth.JWTSecret == "" {
		log.Warn("auth.jwt_secret is empty")
	}

	service := app.NewQuizService(log, store, reader, store, gen)
	router := transport.NewRouter(log, service, cfg.Groq.Model, cfg.Auth.JWTSecret)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quizlink server", slog.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
