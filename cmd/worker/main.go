package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"notebazaar/internal/config"
	kafkax "notebazaar/internal/kafka"
	"notebazaar/internal/market"
	"notebazaar/internal/postgres"
	"notebazaar/internal/redisx"
	"notebazaar/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &worker.Service{
		Notes:       &market.NotesRepo{DB: db},
		Users:       &market.UsersRepo{DB: db},
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-worker",
	}

	// One consumer per topic, same handler.
	for _, topic := range []string{market.TopicNoteListed, market.TopicNotePurchased} {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.WorkerGroup, topic, cfg.Workers)
		go func(topic string) {
			log.Printf("consumer started: group=%s topic=%s workers=%d", cfg.WorkerGroup, topic, cfg.Workers)
			if err := cons.Start(ctx, svc.HandleEvent); err != nil {
				log.Printf("consumer exit (%s): %v", topic, err)
				cancel()
			}
		}(topic)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down worker...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
