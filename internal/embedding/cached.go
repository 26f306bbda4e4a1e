package embedding

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yungbote/cinematch-backend/internal/platform/cache"
	"github.com/yungbote/cinematch-backend/internal/platform/logger"
)

// CachedProvider memoizes embeddings through the shared cache interface,
// keyed by (model, text) so a model change never reuses stale vectors.
// Cache read/write failures are logged and ignored; the provider call is
// the source of truth.
type CachedProvider struct {
	log   *logger.Logger
	inner Provider
	store cache.Store
}

func NewCachedProvider(log *logger.Logger, inner Provider, store cache.Store) (*CachedProvider, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if inner == nil {
		return nil, fmt.Errorf("embedding provider required")
	}
	if store == nil {
		return nil, fmt.Errorf("cache store required")
	}
	return &CachedProvider{
		log:   log.With("service", "CachedEmbeddingProvider"),
		inner: inner,
		store: store,
	}, nil
}

func (p *CachedProvider) Model() string { return p.inner.Model() }

func (p *CachedProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	missing := make([]int, 0, len(texts))

	for i, text := range texts {
		key := cache.Key(p.inner.Model(), text)
		raw, ok, err := p.store.Get(ctx, key)
		if err != nil {
			p.log.Warn("embedding cache get failed", "error", err)
		}
		if !ok || err != nil {
			missing = append(missing, i)
			continue
		}
		var vec []float32
		if err := json.Unmarshal([]byte(raw), &vec); err != nil {
			p.log.Warn("embedding cache entry corrupt, re-embedding", "key", key, "error", err)
			missing = append(missing, i)
			continue
		}
		out[i] = vec
	}

	if len(missing) == 0 {
		return out, nil
	}

	batch := make([]string, len(missing))
	for i, idx := range missing {
		batch[i] = texts[idx]
	}
	vecs, err := p.inner.Embed(ctx, batch)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missing) {
		return nil, fmt.Errorf("cached embed: provider returned %d vectors for %d inputs", len(vecs), len(missing))
	}

	for i, idx := range missing {
		out[idx] = vecs[i]
		raw, err := json.Marshal(vecs[i])
		if err != nil {
			continue
		}
		key := cache.Key(p.inner.Model(), texts[idx])
		if err := p.store.Set(ctx, key, string(raw)); err != nil {
			p.log.Warn("embedding cache set failed", "error", err)
		}
	}
	return out, nil
}
