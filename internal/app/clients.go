package app

import (
	"fmt"

	"github.com/yungbote/cinematch-backend/internal/embedding"
	"github.com/yungbote/cinematch-backend/internal/platform/cache"
	"github.com/yungbote/cinematch-backend/internal/platform/logger"
	"github.com/yungbote/cinematch-backend/internal/platform/openai"
)

// wireProvider builds the embedding provider, optionally wrapped in a
// cache-backed memoization layer.
func wireProvider(log *logger.Logger, cfg Config) (embedding.Provider, error) {
	client, err := openai.NewClient(log)
	if err != nil {
		return nil, fmt.Errorf("init openai client: %w", err)
	}

	switch cfg.CacheBackend {
	case "":
		return client, nil
	case "memory":
		store, err := cache.NewFIFO(log, cfg.CacheMaxSize)
		if err != nil {
			return nil, fmt.Errorf("init fifo cache: %w", err)
		}
		return embedding.NewCachedProvider(log, client, store)
	case "redis":
		store, err := cache.NewRedis(log)
		if err != nil {
			return nil, fmt.Errorf("init redis cache: %w", err)
		}
		return embedding.NewCachedProvider(log, client, store)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
