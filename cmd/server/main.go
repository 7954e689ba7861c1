package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/serchbauti/technical-t1/internal/events"
	"github.com/serchbauti/technical-t1/internal/handler"
	"github.com/serchbauti/technical-t1/internal/repository"
	"github.com/serchbauti/technical-t1/internal/service"
	"github.com/serchbauti/technical-t1/pkg/database"
	"github.com/serchbauti/technical-t1/pkg/logger"
	"github.com/serchbauti/technical-t1/pkg/redis"
)

func main() {
	cfg := loadConfig()

	log := logger.ForEnvironment("payment-simulator", cfg.Environment)
	defer log.Sync()

	ctx := context.Background()

	// Initialize database
	db, err := database.NewMongoDB(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal("failed to connect to mongodb", zap.Error(err))
	}

	// Initialize repositories
	clientRepo := repository.NewClientRepository(db.Database)
	cardRepo := repository.NewCardRepository(db.Database)
	chargeRepo := repository.NewChargeRepository(db.Database)

	if err := cardRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal("failed to create card indexes", zap.Error(err))
	}
	if err := chargeRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal("failed to create charge indexes", zap.Error(err))
	}

	// Optional idempotency cache
	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache = redis.NewRedisClient(cfg.RedisURL)
		defer cache.Close()
	}

	// Optional Kafka event publisher; falls back to log-only
	var publisher events.Publisher = events.NewLogPublisher(log)
	if cfg.KafkaBrokers != "" {
		kafka, err := events.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic, log)
		if err != nil {
			log.Fatal("failed to connect to kafka", zap.Error(err))
		}
		defer kafka.Close()
		publisher = kafka
	}

	// Initialize services
	clientService := service.NewClientService(clientRepo, log)
	cardService := service.NewCardService(cardRepo, clientRepo, log)
	chargeService := service.NewChargeService(chargeRepo, clientRepo, cardRepo, cache, publisher, log)

	// Initialize handlers
	clientHandler := handler.NewClientHandler(clientService, log)
	cardHandler := handler.NewCardHandler(cardService, log)
	chargeHandler := handler.NewChargeHandler(chargeService, log)

	router := handler.NewRouter(clientHandler, cardHandler, chargeHandler, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}
	if err := db.Close(shutdownCtx); err != nil {
		log.Error("failed to close mongodb connection", zap.Error(err))
	}

	log.Info("server exited")
}

type Config struct {
	Port         string
	MongoURI     string
	RedisURL     string
	KafkaBrokers string
	KafkaTopic   string
	Environment  string
}

func loadConfig() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		MongoURI:     getEnv("MONGODB_URI", "mongodb://localhost:27017/t1db"),
		RedisURL:     getEnv("REDIS_URL", ""),
		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "charge-events"),
		Environment:  getEnv("ENVIRONMENT", "development"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
