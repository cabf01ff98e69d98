package repositories

import (
	"streamwall/internal/core/ports"
	"streamwall/internal/infrastructure/repositories/memory"
	redisrepo "streamwall/internal/infrastructure/repositories/redis"
	"streamwall/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory creates repositories with fallback support
type RepositoryFactory struct {
	useRedis    bool
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewRepositoryFactory creates a new repository factory. When Redis is
// enabled but unreachable, the factory falls back to memory repositories so
// the server still comes up.
func NewRepositoryFactory(cfg *config.Config, logger *zap.Logger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		useRedis: cfg.Redis.Enabled,
		logger:   logger,
	}

	if cfg.Redis.Enabled {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warn("failed to connect to Redis, falling back to memory repositories",
				zap.Error(err))
			factory.useRedis = false
		} else {
			factory.redisClient = client
			logger.Info("using Redis repositories")
		}
	}

	if !factory.useRedis {
		logger.Info("using memory repositories")
	}

	return factory, nil
}

func (f *RepositoryFactory) CreateTokenRepository() ports.TokenRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisTokenRepository(f.redisClient)
	}
	return memory.NewMemoryTokenRepository()
}

func (f *RepositoryFactory) CreateStreamRepository() ports.StreamRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewRedisStreamRepository(f.redisClient)
	}
	return memory.NewMemoryStreamRepository()
}

// Close releases the Redis connection if one was established.
func (f *RepositoryFactory) Close() error {
	return redisrepo.CloseRedisClient(f.redisClient)
}
