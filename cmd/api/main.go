package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"notebazaar/internal/config"
	"notebazaar/internal/httpx"
	kafkax "notebazaar/internal/kafka"
	"notebazaar/internal/market"
	"notebazaar/internal/payments"
	"notebazaar/internal/postgres"
	"notebazaar/internal/redisx"
	"notebazaar/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Schema first, then the pool.
	if err := postgres.Migrate(ctx, cfg.PostgresDSN); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prodListed := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicNoteListed, 1024)
	prodListed.Start(ctx)
	prodPurchased := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicNotePurchased, 1024)
	prodPurchased.Start(ctx)

	store, err := newStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	users := &market.UsersRepo{DB: db}
	notes := &market.NotesRepo{DB: db}
	purchases := &market.PurchasesRepo{DB: db}

	router := httpx.NewRouter()

	ah := &httpx.AuthHandler{Users: users, Secret: []byte(cfg.JWTSecret), TokenTTL: cfg.TokenTTL}
	ah.Register(router)

	nh := &httpx.NotesHandler{
		Notes:    notes,
		Storage:  store,
		Redis:    rdb,
		Producer: prodListed,
		Secret:   []byte(cfg.JWTSecret),
		Service:  cfg.ServiceName,
	}
	nh.Register(router)

	ph := &httpx.PurchasesHandler{
		Purchases: purchases,
		Notes:     notes,
		Producer:  prodPurchased,
		Service:   cfg.ServiceName,
	}
	ph.Register(router)

	gh := &httpx.PaymentsHandler{Gateway: payments.NewGateway(cfg.StripeSecretKey)}
	gh.Register(router)

	if cfg.StorageBackend == "disk" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir)))
		router.Handle("/uploads/*", fs)
	}

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	// Listener is down, nothing publishes anymore: flush and close.
	prodListed.Close()
	prodPurchased.Close()
	cancel()
	prodListed.WaitClosed()
	prodPurchased.WaitClosed()
}

func newStorage(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if strings.EqualFold(cfg.StorageBackend, "s3") {
		return storage.NewS3(ctx, storage.S3Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return storage.NewDisk(cfg.UploadDir)
}
