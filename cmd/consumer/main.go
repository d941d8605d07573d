// Command consumer runs the booking ledger consumer on its own, for
// deployments that keep BOOKING_CONSUMER_ENABLED off in the API servers.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/iliyamo/immersive-venue-booking/internal/config"
	"github.com/iliyamo/immersive-venue-booking/internal/logger"
	"github.com/iliyamo/immersive-venue-booking/internal/queue"
)

func main() {
	cfg := config.LoadLedgerConfig()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "booking-ledger"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("ledger consumer starting", "queue", queue.QueueName, "dir", cfg.Dir)
	if err := queue.NewConsumer(cfg.RabbitURL, cfg.Dir, log).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("ledger consumer stopped", "error", err)
	}
	log.Info("ledger consumer stopped")
}
