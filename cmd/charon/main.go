package main

import (
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/adawatch/charon/adapters/blockfrost"
	"github.com/adawatch/charon/adapters/events"
	"github.com/adawatch/charon/adapters/store"
	"github.com/adawatch/charon/adapters/tokenizer"
	"github.com/adawatch/charon/config"
	"github.com/adawatch/charon/ports"
	"github.com/adawatch/charon/service"
	"github.com/adawatch/charon/transport/http"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.UsingDefaultSecret() {
		logger.Warn("JWT_SECRET not set, using default (change in production)")
	}

	var (
		challengeStore ports.ChallengeStore
		publisher      message.Publisher
	)

	wmLogger := watermill.NewStdLogger(false, false)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("Failed to parse Redis URL", zap.Error(err))
		}
		redisClient := redis.NewClient(opts)

		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			wmLogger,
		)
		if err != nil {
			logger.Fatal("Failed to create Redis publisher", zap.Error(err))
		}

		challengeStore = store.NewRedisStore(redisClient, cfg.ChallengeTTL)
		logger.Info("Using Redis challenge store", zap.Duration("ttl", cfg.ChallengeTTL))
	} else {
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		challengeStore = store.NewMemoryStore(cfg.ChallengeTTL)
		logger.Info("Using in-memory challenge store", zap.Duration("ttl", cfg.ChallengeTTL))
	}

	authService := service.NewAuthService(
		challengeStore,
		tokenizer.NewJWTTokenizer([]byte(cfg.JWTSecret)),
		events.NewWatermillPublisher(publisher),
		logger.Named("auth"),
		service.WithAppName(cfg.AppName),
		service.WithSessionTTL(cfg.SessionTTL),
	)

	var chainData ports.ChainData
	if cfg.BlockfrostProjectID != "" {
		chainData = blockfrost.New(cfg.BlockfrostProjectID, cfg.Network)
		logger.Info("Blockfrost client initialized", zap.String("network", cfg.Network))
	} else {
		logger.Warn("BLOCKFROST_PROJECT_ID not set, user-data endpoints disabled")
	}

	router := http.SetupRouter(authService, chainData)

	logger.Info("Server starting", zap.String("addr", cfg.Addr))
	if err := router.Run(cfg.Addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
