package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
)

// Config selects and configures a storage backend.
type Config struct {
	Backend     string        `mapstructure:"backend" yaml:"backend"`
	RedisAddr   string        `mapstructure:"redisAddr" yaml:"redisAddr"`
	RedisPrefix string        `mapstructure:"redisPrefix" yaml:"redisPrefix"`
	PostgresURL string        `mapstructure:"postgresURL" yaml:"postgresURL"`
	TTL         time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// ErrNotPersistent is returned by RequirePersistent for the in-memory backend.
var ErrNotPersistent = errors.New("storage backend does not outlive the process")

func (c Config) backend() string {
	backend := strings.ToLower(strings.TrimSpace(c.Backend))
	if backend == "" {
		return constants.StorageBackendMemory
	}
	return backend
}

// RequirePersistent fails for the memory backend, whose records are lost
// when a one-shot command exits.
func (c Config) RequirePersistent() error {
	if c.backend() == constants.StorageBackendMemory {
		return fmt.Errorf("%w: %s", ErrNotPersistent, constants.StorageBackendMemory)
	}
	return nil
}

// Open builds the configured store wrapped with instrumentation. The
// returned close function releases backend connections.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Store, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	backend := cfg.backend()

	switch backend {
	case constants.StorageBackendMemory:
		return NewInstrumented(NewMemoryStore(), backend, logger), func() {}, nil

	case constants.StorageBackendRedis:
		rdb, err := NewRedisClient(cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to redis",
			zap.String("op", "storage.Open"),
			zap.String("addr", rdb.Options().Addr))
		store := NewRedisStore(rdb, cfg.RedisPrefix, cfg.TTL)
		return NewInstrumented(store, backend, logger), func() { rdb.Close() }, nil

	case constants.StorageBackendPostgres:
		if cfg.PostgresURL == "" {
			return nil, nil, fmt.Errorf("postgres backend requires a database URL")
		}
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		store := NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("connected to postgres", zap.String("op", "storage.Open"))
		return NewInstrumented(store, backend, logger), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
