package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"livequiz-service/internal/app"
	"livequiz-service/internal/config"
	"livequiz-service/internal/domain"
	"livequiz-service/internal/infra/memory"
	pgstore "livequiz-service/internal/infra/postgres"
	rediscache "livequiz-service/internal/infra/redis"
	transport "livequiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the live quiz server",
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

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var store transport.QuizStore
	if pool != nil {
		store = pgstore.NewQuizStore(pool)
	} else {
		memStore := memory.NewQuizStore()
		seedSampleQuizzes(ctx, memStore)
		store = memStore
	}

	quizTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
	var quizzes app.QuizRepository
	var invalidator transport.QuizInvalidator
	if redisClient != nil {
		cache := rediscache.NewQuizCache(redisClient, store, quizTTL)
		quizzes, invalidator = cache, cache
	} else {
		cache := memory.NewQuizCache(store, quizTTL)
		quizzes, invalidator = cache, cache
	}

	timings := app.Timings{
		StatsDelay:      config.Duration(cfg.Game.StatsDelay, app.DefaultTimings().StatsDelay),
		ZeroAnswerDelay: config.Duration(cfg.Game.ZeroAnswerDelay, app.DefaultTimings().ZeroAnswerDelay),
	}

	hub := transport.NewHub()
	service := app.NewGameService(app.NewRegistry(), quizzes, hub, timings)
	wsHandler := transport.NewWSHandler(service, hub)
	quizAPI := transport.NewQuizAPI(store, invalidator)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	quizAPI.Register(mux)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting live quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// seedSampleQuizzes loads demo content into the in-memory store so the
// service is playable without postgres.
func seedSampleQuizzes(ctx context.Context, store *memory.QuizStore) {
	for _, quiz := range sampleQuizzes() {
		if _, err := store.CreateQuiz(ctx, quiz); err != nil {
			log.Warn().Err(err).Str("title", quiz.Title).Msg("failed to seed sample quiz")
		}
	}
}

func sampleQuizzes() []domain.Quiz {
	return []domain.Quiz{
		{
			Title: "General Knowledge",
			Questions: []domain.Question{
				{
					Text:          "What is the capital of France?",
					Options:       []string{"Berlin", "Paris", "Madrid", "Rome"},
					CorrectAnswer: "Paris",
					TimeLimit:     20,
				},
				{
					Text:          "Which planet is known as the Red Planet?",
					Options:       []string{"Venus", "Mars", "Jupiter"},
					CorrectAnswer: "Mars",
					TimeLimit:     15,
				},
				{
					Text:          "What is 7 x 8?",
					Options:       []string{"54", "56", "64", "48"},
					CorrectAnswer: "56",
					TimeLimit:     10,
				},
			},
		},
	}
}
