package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/lunchvote/api/internal/adapters/notify/webpush"
	"github.com/lunchvote/api/internal/adapters/repository/postgres"
	"github.com/lunchvote/api/internal/config"
	"github.com/lunchvote/api/internal/core/services"
)

// One-shot outbox drain, suitable for cron when the in-process relay is
// disabled.
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

	outboxRepo := postgres.NewOutboxRepository(db)
	subRepo := postgres.NewSubscriptionRepository(db)
	sender := webpush.NewSender(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.PushSubscriber)
	relay := services.NewFanoutRelay(outboxRepo, subRepo, sender, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	logger.Info("draining notification outbox")

	if err := relay.RunOnce(ctx); err != nil {
		log.Fatalf("Error draining outbox: %v", err)
	}

	logger.Info("outbox drain completed")
}
