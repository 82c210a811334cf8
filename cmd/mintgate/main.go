package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/layer-3/mintgate/adapters/chain"
	"github.com/layer-3/mintgate/adapters/events"
	"github.com/layer-3/mintgate/adapters/social"
	"github.com/layer-3/mintgate/adapters/store"
	"github.com/layer-3/mintgate/adapters/tokenizer"
	"github.com/layer-3/mintgate/core"
	"github.com/layer-3/mintgate/service"
	transport "github.com/layer-3/mintgate/transport/http"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	if err := run(logger); err != nil {
		logger.Fatal("mintgate exited with error", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	// ── Configuration ────────────────────────────────────────────────────────
	viper.SetConfigName("mintgate")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("configs")
	viper.AddConfigPath(".")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.addr", ":9000")
	viper.SetDefault("redis.url", "redis://localhost:6379/0")
	viper.SetDefault("auth.domain", "mintgate.local")
	viper.SetDefault("social.base_url", "https://api.insightiq.example.com/v1")
	viper.SetDefault("social.api_token", "")
	viper.SetDefault("chain.rpc_url", "https://arb1.arbitrum.io/rpc")
	viper.SetDefault("chain.contract_address", "")
	viper.SetDefault("chain.admin_key", "")
	viper.SetDefault("chain.confirm_timeout", service.DefaultConfirmationTimeout)
	viper.SetDefault("token.decimals", 18)

	if err := viper.ReadInConfig(); err != nil {
		var cfgNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgNotFound) {
			return fmt.Errorf("read config: %w", err)
		}
		logger.Warn("no config file found, using defaults and env vars")
	}

	// ── Redis ────────────────────────────────────────────────────────────────
	opts, err := redis.ParseURL(viper.GetString("redis.url"))
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	redisClient := redis.NewClient(opts)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("connected to redis")

	// ── Events ───────────────────────────────────────────────────────────────
	wmLogger := watermill.NewStdLogger(false, false)
	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: redisClient},
		wmLogger,
	)
	if err != nil {
		return fmt.Errorf("create event publisher: %w", err)
	}
	eventPub := events.NewWatermillPublisher(publisher)

	// ── Signing key for session tokens ───────────────────────────────────────
	// Sessions do not survive a restart; an ephemeral key is sufficient and
	// avoids key distribution. Load one here instead if that ever changes.
	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate signing key: %w", err)
	}

	// ── Milestones ───────────────────────────────────────────────────────────
	var declared []core.Milestone
	if err := viper.UnmarshalKey("milestones", &declared); err != nil {
		return fmt.Errorf("read milestone config: %w", err)
	}
	milestoneSet, err := core.NewMilestoneSet(declared)
	if err != nil {
		return fmt.Errorf("invalid milestone config: %w", err)
	}

	// ── Chain client ─────────────────────────────────────────────────────────
	adminKey, err := ethcrypto.HexToECDSA(viper.GetString("chain.admin_key"))
	if err != nil {
		return fmt.Errorf("parse chain admin key: %w", err)
	}
	chainClient, err := chain.Dial(
		context.Background(),
		viper.GetString("chain.rpc_url"),
		viper.GetString("chain.contract_address"),
		adminKey,
		logger,
	)
	if err != nil {
		return fmt.Errorf("connect to chain: %w", err)
	}
	logger.Info("connected to chain rpc")

	// ── Services ─────────────────────────────────────────────────────────────
	jwtTokenizer := tokenizer.NewJWTTokenizer(signKey)
	socialClient := social.NewClient(
		viper.GetString("social.base_url"),
		viper.GetString("social.api_token"),
		logger,
	)

	authService := service.NewAuthService(
		store.NewRedisNonceStore(redisClient),
		store.NewRedisIdentityStore(redisClient),
		jwtTokenizer,
		eventPub,
		viper.GetString("auth.domain"),
		logger,
	)
	milestoneService := service.NewMilestoneService(socialClient, milestoneSet, logger)
	mintService := service.NewMintService(
		jwtTokenizer,
		store.NewRedisMintLedger(redisClient),
		chainClient,
		eventPub,
		viper.GetInt32("token.decimals"),
		viper.GetDuration("chain.confirm_timeout"),
		logger,
	)

	// ── HTTP ─────────────────────────────────────────────────────────────────
	router := transport.SetupRouter(authService, milestoneService, mintService, logger)

	addr := viper.GetString("server.addr")
	logger.Info("starting server", zap.String("addr", addr))
	return router.Run(addr)
}
