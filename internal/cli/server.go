package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classroom-live-service/internal/app"
	"classroom-live-service/internal/config"
	"classroom-live-service/internal/domain"
	"classroom-live-service/internal/infra/memory"
	pginfra "classroom-live-service/internal/infra/postgres"
	redisinfra "classroom-live-service/internal/infra/redis"
	transport "classroom-live-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the classroom live server",
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

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pginfra.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	// Counters live in Redis when configured so a restart keeps the
	// room totals; the in-memory counter is the default.
	var counters app.DoubtCounter = memory.NewDoubtCounter()
	if redisClient != nil {
		roomTTL := config.TTLDuration(cfg.Room.TTL, 0)
		counters = redisinfra.NewDoubtCounter(redisClient, roomTTL)
	}

	roomService := app.NewRoomService(counters)
	wsHandler := transport.NewWSHandler(roomService)

	var attemptRepo app.AttemptRepository = memory.NewAttemptStore()
	if pool != nil {
		attemptRepo = pginfra.NewAttemptStore(pool)
	}
	attemptService := app.NewAttemptService(quizRepo, attemptRepo)
	attemptHandler := transport.NewAttemptHandler(attemptService)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("/api/quizzes/submit", attemptHandler.Submit)
	mux.HandleFunc("/api/quizzes/attempts", attemptHandler.Attempts)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting classroom live service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes provides a minimal set of quiz data for running without Postgres.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:    "quiz-1",
			Title: "Arithmetic warmup",
			Room:  "classroom",
			Questions: []domain.Question{
				{
					Text:         "What is 2 + 2?",
					Options:      []string{"3", "4", "5"},
					CorrectIndex: 1,
					Points:       10,
				},
				{
					Text:         "What is 3 * 3?",
					Options:      []string{"6", "9", "12"},
					CorrectIndex: 1,
					Points:       10,
				},
			},
		},
	}
}
