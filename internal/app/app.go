// Package app wires the production dependencies behind the request handler.
package app

import (
	"context"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/redis/go-redis/v9"

	"student-agent/handler"
	"student-agent/internal/config"
	"student-agent/internal/integrations/paramstore"
	"student-agent/internal/repository"
	"student-agent/internal/sessionstore"
	"student-agent/internal/signals"
	"student-agent/internal/usecase"
)

// Build constructs the handler. The returned cleanup closes the Redis client
// and the Postgres pool. No network call is made here; every client connects
// on first use.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*handler.Handler, func(), error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("app: load aws config: %w", err)
	}

	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return nil, nil, fmt.Errorf("app: ssm client: %w", err)
	}
	settings, err := paramstore.NewSettingsSource(ssmClient, cfg.ParamPrefix)
	if err != nil {
		return nil, nil, fmt.Errorf("app: settings source: %w", err)
	}
	state, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.StateTable)
	if err != nil {
		return nil, nil, fmt.Errorf("app: state client: %w", err)
	}

	pool, err := signals.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("app: signal pool: %w", err)
	}
	signalSource, err := signals.New(pool)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("app: signal source: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	cleanup := func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("redis close failed", "err", err)
		}
		pool.Close()
	}
	sessions, err := sessionstore.New(rdb, cfg.SessionTTL)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("app: session store: %w", err)
	}

	chat, err := usecase.NewChatService(settings, sessions, state, state, signalSource, cfg.MaxMessageLength, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("app: chat service: %w", err)
	}
	h, err := handler.NewHandler(chat, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("app: handler: %w", err)
	}
	return h, cleanup, nil
}
