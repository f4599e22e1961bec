package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/lunchvote/api/internal/adapters/handler/http"
	"github.com/lunchvote/api/internal/adapters/notify/webpush"
	"github.com/lunchvote/api/internal/adapters/notify/ws"
	"github.com/lunchvote/api/internal/adapters/repository/postgres"
	"github.com/lunchvote/api/internal/config"
	"github.com/lunchvote/api/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := sql.Open("postgres", cfg.DatabaseURL())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	restaurantRepo := postgres.NewRestaurantRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	userRepo := postgres.NewUserRepository(db)
	subRepo := postgres.NewSubscriptionRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	hub := ws.NewHub(cfg.AllowedOrigins, logger)

	authService := services.NewAuthService(userRepo, []byte(cfg.JWTSecret))
	userService := services.NewUserService(userRepo)
	restaurantService := services.NewRestaurantService(restaurantRepo)
	voteService := services.NewVoteService(voteRepo, restaurantRepo, hub, logger)
	subService := services.NewSubscriptionService(subRepo)

	sender := webpush.NewSender(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.PushSubscriber)
	relay := services.NewFanoutRelay(outboxRepo, subRepo, sender, logger)

	handler := http.NewHandler(http.Deps{
		Auth:          http.NewAuthHandler(authService),
		Users:         http.NewUserHandler(userService),
		Restaurants:   http.NewRestaurantHandler(restaurantService),
		Votes:         http.NewVoteHandler(voteService),
		Subscriptions: http.NewSubscriptionHandler(subService),
		Realtime:      hub,
		JWTSecret:     []byte(cfg.JWTSecret),
		CastRateLimit: cfg.CastRateLimit,
	})

	server := &stdhttp.Server{Addr: "0.0.0.0:" + cfg.Port, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go services.Run(ctx, relay, cfg.PushRelayInterval, logger)

	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}
