package embedding

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/cinematch-backend/internal/catalog"
	"github.com/yungbote/cinematch-backend/internal/platform/logger"
)

// IndexedVector pairs a catalog index with its embedding, so the
// entry/vector alignment is carried by the data itself rather than by two
// slices that could drift apart.
type IndexedVector struct {
	Index  int
	Vector []float32
}

// Store holds the encoded catalog for a session. EncodeCatalog replaces the
// vector set wholesale; readers never observe a partially encoded catalog.
type Store struct {
	log         *logger.Logger
	provider    Provider
	batchSize   int
	concurrency int

	mu      sync.RWMutex
	vectors []IndexedVector
}

func NewStore(log *logger.Logger, provider Provider, batchSize, concurrency int) (*Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if provider == nil {
		return nil, fmt.Errorf("embedding provider required")
	}
	if batchSize <= 0 {
		batchSize = 32
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Store{
		log:         log.With("service", "EmbeddingStore"),
		provider:    provider,
		batchSize:   batchSize,
		concurrency: concurrency,
	}, nil
}

// EncodeCatalog embeds every composite text, batched and fanned out across
// workers, order preserved. The new vectors are published in one step only
// after every batch has succeeded.
func (s *Store) EncodeCatalog(ctx context.Context, cat *catalog.Catalog) error {
	if cat == nil || cat.Len() == 0 {
		return fmt.Errorf("encode catalog: catalog is empty")
	}

	texts := cat.CompositeTexts()
	s.log.Info("Encoding catalog", "entries", len(texts), "batch_size", s.batchSize, "model", s.provider.Model())

	next := make([]IndexedVector, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for start := 0; start < len(texts); start += s.batchSize {
		start := start
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		g.Go(func() error {
			vecs, err := s.provider.Embed(gctx, texts[start:end])
			if err != nil {
				return err
			}
			if len(vecs) != end-start {
				return fmt.Errorf("encode catalog: batch [%d,%d) returned %d vectors", start, end, len(vecs))
			}
			for i, v := range vecs {
				next[start+i] = IndexedVector{Index: start + i, Vector: v}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	s.vectors = next
	s.mu.Unlock()

	s.log.Info("Catalog encoded", "entries", len(next), "dim", vectorDim(next))
	return nil
}

// Vectors returns the encoded catalog, index-aligned with catalog order.
// The slice is shared read-only; callers must not mutate it.
func (s *Store) Vectors() []IndexedVector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vectors
}

func (s *Store) Encoded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors) > 0
}

func (s *Store) Model() string { return s.provider.Model() }

func vectorDim(vecs []IndexedVector) int {
	if len(vecs) == 0 {
		return 0
	}
	return len(vecs[0].Vector)
}
