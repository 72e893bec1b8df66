package commands

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/sheikh-saqib/echeque-service/internal/cheque"
	"github.com/sheikh-saqib/echeque-service/internal/config"
	"github.com/sheikh-saqib/echeque-service/internal/events/kafka"
	"github.com/sheikh-saqib/echeque-service/internal/events/logpub"
	interfaces "github.com/sheikh-saqib/echeque-service/internal/interfaces"
	"github.com/sheikh-saqib/echeque-service/internal/storage/file"
	"github.com/sheikh-saqib/echeque-service/internal/storage/memory"
	"github.com/sheikh-saqib/echeque-service/internal/storage/postgres"
	redisstore "github.com/sheikh-saqib/echeque-service/internal/storage/redis"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore builds the cheque store selected by cfg.Storage. The returned closer
// releases its connections.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (interfaces.ChequeStore, io.Closer, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("using in-memory storage; cheques are lost on restart")
		return memory.NewMemoryChequeStore(), nopCloser{}, nil

	case config.StorageFile:
		s, err := file.Open(cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using file storage", zap.String("path", cfg.DataFile))
		return s, nopCloser{}, nil

	case config.StoragePostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		n, err := postgres.Migrate(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrating: %w", err)
		}
		logger.Info("using postgres storage", zap.Int("migrations_applied", n))
		return postgres.NewPostgresChequeStore(db), db, nil

	case config.StorageRedis:
		client, err := redisstore.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using redis storage", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
		return redisstore.NewRedisChequeStore(client), client, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage)
}

// openPublisher returns a Kafka publisher when brokers are configured, otherwise
// one that writes events to the log.
func openPublisher(cfg config.Config, logger *zap.Logger) (interfaces.EventPublisher, io.Closer) {
	if len(cfg.KafkaBrokers) == 0 {
		return logpub.NewPublisher(logger.Named("events")), nopCloser{}
	}
	logger.Info("publishing events to kafka",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", eventTopic(cfg)),
	)
	p := kafka.NewPublisher(cfg.KafkaBrokers)
	return p, p
}

// eventTopic is the topic the manager will publish to.
func eventTopic(cfg config.Config) string {
	if cfg.KafkaTopic == "" {
		return cheque.DefaultTopic
	}
	return cfg.KafkaTopic
}
