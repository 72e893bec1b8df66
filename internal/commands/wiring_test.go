package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/echeque-service/internal/cheque"
	"github.com/sheikh-saqib/echeque-service/internal/config"
	"github.com/sheikh-saqib/echeque-service/internal/events/kafka"
	"github.com/sheikh-saqib/echeque-service/internal/events/logpub"
	"github.com/sheikh-saqib/echeque-service/internal/storage/file"
	"github.com/sheikh-saqib/echeque-service/internal/storage/memory"
	redisstore "github.com/sheikh-saqib/echeque-service/internal/storage/redis"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("memory", func(t *testing.T) {
		s, closer, err := openStore(ctx, config.Config{Storage: config.StorageMemory}, logger)
		require.NoError(t, err)
		defer closer.Close()
		assert.IsType(t, &memory.MemoryChequeStore{}, s)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cheques.json")
		s, closer, err := openStore(ctx, config.Config{Storage: config.StorageFile, DataFile: path}, logger)
		require.NoError(t, err)
		defer closer.Close()
		assert.IsType(t, &file.FileChequeStore{}, s)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		s, closer, err := openStore(ctx, config.Config{Storage: config.StorageRedis, RedisAddr: mr.Addr()}, logger)
		require.NoError(t, err)
		defer closer.Close()
		assert.IsType(t, &redisstore.RedisChequeStore{}, s)
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := openStore(ctx, config.Config{Storage: "tape"}, logger)
		assert.ErrorContains(t, err, `unknown storage driver "tape"`)
	})
}

func TestOpenPublisher(t *testing.T) {
	p, closer := openPublisher(config.Config{}, zap.NewNop())
	assert.IsType(t, &logpub.Publisher{}, p)
	assert.NoError(t, closer.Close())

	p, closer = openPublisher(config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "t"}, zap.NewNop())
	assert.IsType(t, &kafka.Publisher{}, p)
	assert.NoError(t, closer.Close())
}

func TestEventTopicDefaultsToManagerTopic(t *testing.T) {
	t.Setenv("ECHEQUE_KAFKA_TOPIC", "")
	cfg, err := config.FromEnv(os.Getenv)
	require.NoError(t, err)
	assert.Equal(t, cheque.DefaultTopic, eventTopic(cfg))

	cfg.KafkaTopic = "cheques"
	assert.Equal(t, "cheques", eventTopic(cfg))
}

func TestMigrateRequiresDatabase(t *testing.T) {
	t.Setenv("ECHEQUE_STORAGE", "memory")
	t.Setenv("ECHEQUE_DATABASE_URL", "")

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"migrate"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	assert.ErrorContains(t, err, "no database")
}
