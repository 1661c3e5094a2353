package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/papertrade/trading-service/internal/api"
	"github.com/papertrade/trading-service/internal/config"
	"github.com/papertrade/trading-service/internal/database"
	"github.com/papertrade/trading-service/internal/engine"
	"github.com/papertrade/trading-service/internal/kafka"
	"github.com/papertrade/trading-service/internal/portfolio"
	"github.com/papertrade/trading-service/internal/quotes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate("db/migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	quoteCache := quotes.New(redisClient, cfg.Redis.QuoteTTL, db)

	eng := engine.New(db)

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TradeTopic)
	defer producer.Close()

	consumer := kafka.NewQuoteConsumer(cfg.Kafka.Brokers, cfg.Kafka.QuoteTopic, cfg.Kafka.GroupID, db, quoteCache)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Printf("Quote consumer stopped: %v", err)
		}
	}()

	refresher := portfolio.NewRefresher(quoteCache, db, cfg.Market.RefreshInterval)
	go refresher.Start(ctx)

	handler := api.NewHandler(db, eng, refresher, producer)
	router := api.SetupRoutes(handler)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("Trading service listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
