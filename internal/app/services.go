package app

import (
	"context"
	"fmt"

	"github.com/yungbote/cinematch-backend/internal/catalog"
	"github.com/yungbote/cinematch-backend/internal/embedding"
	"github.com/yungbote/cinematch-backend/internal/engine"
	"github.com/yungbote/cinematch-backend/internal/platform/logger"
	"github.com/yungbote/cinematch-backend/internal/scoring"
)

// wireEngine loads the catalog, encodes it, and assembles the analysis
// service. Encoding happens here, before the router ever sees a request,
// so no request can observe a partially encoded catalog.
func wireEngine(ctx context.Context, log *logger.Logger, cfg Config, provider embedding.Provider) (*engine.Service, error) {
	cat, err := loadCatalog(ctx, log, cfg)
	if err != nil {
		return nil, err
	}

	store, err := embedding.NewStore(log, provider, cfg.BatchSize, cfg.EncodeConcurrency)
	if err != nil {
		return nil, err
	}
	if err := store.EncodeCatalog(ctx, cat); err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}

	sessions, err := embedding.NewSessions(log, provider)
	if err != nil {
		return nil, err
	}

	scorer, err := scoring.NewScorer(log, cfg.Alpha, cfg.Beta, cfg.Gamma, matcherFor(cfg.Matcher))
	if err != nil {
		return nil, err
	}

	return engine.NewService(log, cat, store, sessions, scorer, engine.Config{
		TopN:                  cfg.TopN,
		WeakThreshold:         cfg.WeakThreshold,
		DistributionThreshold: cfg.DistributionThreshold,
	})
}

func loadCatalog(ctx context.Context, log *logger.Logger, cfg Config) (*catalog.Catalog, error) {
	switch cfg.CatalogSource {
	case "sqlite":
		store, err := catalog.NewSQLiteStore(log, cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		return store.Load(ctx)
	default:
		return catalog.LoadCSV(log, cfg.CatalogPath)
	}
}

func matcherFor(name string) scoring.TagMatcher {
	switch name {
	case "exact":
		return scoring.ExactMatcher{}
	case "tokenset":
		return scoring.TokenSetMatcher{}
	default:
		return scoring.SubstringMatcher{}
	}
}
