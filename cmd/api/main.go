package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pollroom/internal/config"
	"pollroom/internal/handler"
	"pollroom/internal/outbox"
	"pollroom/internal/realtime"
	pollredis "pollroom/internal/redis"
	"pollroom/internal/repository"
	"pollroom/internal/services"
	"pollroom/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog := logger.New(cfg.Server.Environment)
	defer appLog.Logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	redisClient := pollredis.NewClient(cfg.Redis)
	if err := pollredis.Ping(ctx, redisClient); err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	// Repositories
	pollRepo := repository.NewPollRepository(pool)
	voteRepo := repository.NewVoteRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	jobRepo := repository.NewEmailJobRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	// Redis-backed infrastructure
	publisher := pollredis.NewPublisher(redisClient)
	subscriber := pollredis.NewSubscriber(redisClient)
	presence := pollredis.NewPresenceStore(redisClient, publisher, 2*time.Minute)
	viewCache := pollredis.NewViewCache(redisClient, pollredis.DefaultViewCacheConfig())
	limiter := pollredis.NewRateLimiter(redisClient, 30, time.Minute)
	codes := pollredis.NewAuthCodeStore(redisClient, 5*time.Minute)

	// Services
	notifier := services.NewNotifier(jobRepo, appLog)
	authService := services.NewAuthService(userRepo, codes, cfg)
	pollService := services.NewPollService(pollRepo, voteRepo, commentRepo, publisher, viewCache, appLog)
	voteService := services.NewVoteService(voteRepo, notifier, publisher, viewCache, appLog)
	commentService := services.NewCommentService(commentRepo, notifier, publisher, viewCache, appLog)

	// Realtime fan-out
	hub := realtime.NewHub()
	go hub.Run(ctx)
	tally := realtime.NewTally(voteRepo, hub, appLog)
	bridge := realtime.NewBridge(subscriber, hub, tally, appLog)
	go bridge.Run(ctx)
	wsHandler := realtime.NewHandler(hub, tally, presence, appLog)

	// Email job outbox
	processor := outbox.NewProcessor(jobRepo, publisher, appLog, 100, 2*time.Second)
	go processor.Run(ctx)

	router := handler.NewRouter(handler.RouterDeps{
		Config:   cfg,
		Log:      appLog,
		Auth:     authService,
		Polls:    pollService,
		Votes:    voteService,
		Comments: commentService,
		WS:       wsHandler,
		Limiter:  limiter,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		appLog.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Errorf("Server shutdown: %v", err)
	}
}
