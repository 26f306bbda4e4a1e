package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/cinematch-backend/internal/platform/logger"
)

// FIFO is a bounded in-memory Store with strict insertion-order eviction:
// when full, the oldest-inserted entry is dropped, regardless of how
// recently it was read. The order lives in an explicit queue, not in map
// iteration order.
type FIFO struct {
	log     *logger.Logger
	maxSize int

	mu      sync.Mutex
	entries map[string]string
	order   []string
}

type FIFOStats struct {
	Entries int `json:"entries"`
	MaxSize int `json:"max_size"`
}

func NewFIFO(log *logger.Logger, maxSize int) (*FIFO, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if maxSize <= 0 {
		return nil, fmt.Errorf("cache max size must be positive, got %d", maxSize)
	}
	return &FIFO{
		log:     log.With("service", "FIFOCache"),
		maxSize: maxSize,
		entries: make(map[string]string, maxSize),
		order:   make([]string, 0, maxSize),
	}, nil
}

func (c *FIFO) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries[key]
	if ok {
		c.log.Debug("cache hit", "key", key)
	}
	return v, ok, nil
}

func (c *FIFO) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		// Overwrite keeps the original queue position.
		c.entries[key] = value
		return nil
	}

	if len(c.entries) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		c.log.Debug("cache full, evicted oldest entry", "evicted_key", oldest)
	}

	c.entries[key] = value
	c.order = append(c.order, key)
	return nil
}

func (c *FIFO) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *FIFO) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]string, c.maxSize)
	c.order = c.order[:0]
}

func (c *FIFO) Stats() FIFOStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return FIFOStats{Entries: len(c.entries), MaxSize: c.maxSize}
}
