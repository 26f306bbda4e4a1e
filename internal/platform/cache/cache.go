package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Store is the response/embedding cache contract shared with the
// augmentation service. Get reports a miss with ok=false, never an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Key derives the cache key for a model/input pair. The model identifier
// is part of the key so entries written under one model can never be
// served for another.
func Key(model, input string) string {
	sum := sha256.Sum256([]byte(model + ":" + input))
	return hex.EncodeToString(sum[:])
}
