package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/cinematch-backend/internal/catalog"
	"github.com/yungbote/cinematch-backend/internal/embedding"
	"github.com/yungbote/cinematch-backend/internal/platform/logger"
	"github.com/yungbote/cinematch-backend/internal/scoring"
	"github.com/yungbote/cinematch-backend/internal/similarity"
)

// Config carries the tunable analysis parameters.
type Config struct {
	TopN                  int     // ranked recommendations returned per run
	WeakThreshold         float64 // mean similarity below this marks a weak category
	DistributionThreshold float64 // entries below this are ignored by the genre distribution
}

func DefaultConfig() Config {
	return Config{
		TopN:                  3,
		WeakThreshold:         0.4,
		DistributionThreshold: 0.5,
	}
}

// AnalyzeInput is one analysis request. SessionID scopes the query memo;
// TopN zero falls back to the configured default.
type AnalyzeInput struct {
	SessionID    uuid.UUID
	QueryText    string
	GenreWeights scoring.WeightMap
	MoodWeights  scoring.WeightMap
	TopN         int
}

// Result is the complete output of one analysis run: plain immutable data
// for the UI and augmentation collaborators. A re-analysis replaces the
// whole value; nothing is merged.
type Result struct {
	Recommendations   []scoring.Recommendation `json:"recommendations"`
	Stats             scoring.Stats            `json:"coverage_stats"`
	CoverageScore     float64                  `json:"coverage_score"`
	GenreDistribution map[string]float64       `json:"genre_distribution"`
	WeakCategories    []string                 `json:"weak_categories"`
	Model             string                   `json:"model"`
	CatalogSize       int                      `json:"catalog_size"`
}

// Service runs the synchronous retrieval-and-scoring pipeline over a
// catalog encoded once at startup. The encoded catalog is read-only and
// shared by concurrent analyses; only the per-session query memo is
// session-scoped.
type Service struct {
	log      *logger.Logger
	cat      *catalog.Catalog
	store    *embedding.Store
	sessions *embedding.Sessions
	scorer   *scoring.Scorer
	cfg      Config
}

func NewService(
	log *logger.Logger,
	cat *catalog.Catalog,
	store *embedding.Store,
	sessions *embedding.Sessions,
	scorer *scoring.Scorer,
	cfg Config,
) (*Service, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cat == nil || cat.Len() == 0 {
		return nil, fmt.Errorf("catalog required")
	}
	if store == nil || sessions == nil || scorer == nil {
		return nil, fmt.Errorf("engine: missing deps")
	}
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultConfig().TopN
	}
	if cfg.WeakThreshold <= 0 {
		cfg.WeakThreshold = DefaultConfig().WeakThreshold
	}
	if cfg.DistributionThreshold <= 0 {
		cfg.DistributionThreshold = DefaultConfig().DistributionThreshold
	}
	return &Service{
		log:      log.With("service", "AnalysisEngine"),
		cat:      cat,
		store:    store,
		sessions: sessions,
		scorer:   scorer,
		cfg:      cfg,
	}, nil
}

// Analyze runs the full pipeline: validate → encode query → similarity →
// top-N → multi-factor re-rank → coverage. Any failure aborts the run and
// returns nothing; prior results held by the caller stay untouched.
func (s *Service) Analyze(ctx context.Context, in AnalyzeInput) (*Result, error) {
	if strings.TrimSpace(in.QueryText) == "" {
		return nil, fmt.Errorf("analyze: query text is empty")
	}
	if !s.store.Encoded() {
		return nil, fmt.Errorf("analyze: catalog not encoded")
	}
	if err := scoring.ValidateWeightMap("genre_weights", in.GenreWeights); err != nil {
		return nil, err
	}
	if err := scoring.ValidateWeightMap("mood_weights", in.MoodWeights); err != nil {
		return nil, err
	}

	topN := in.TopN
	if topN <= 0 {
		topN = s.cfg.TopN
	}

	enc := s.sessions.Session(in.SessionID)
	if prev, ok := enc.MemoSourceText(embedding.QueryMemoKey); ok && prev != in.QueryText {
		// New query: the old embedding is discarded, not reused.
		enc.Forget(embedding.QueryMemoKey)
	}
	queryVec, err := enc.Encode(ctx, in.QueryText, embedding.QueryMemoKey)
	if err != nil {
		return nil, err
	}

	sims := similarity.All(queryVec, s.store.Vectors())
	hits := similarity.TopN(sims, topN)

	recs := s.scorer.Rank(hits, in.GenreWeights, in.MoodWeights, s.cat)
	stats := scoring.ComputeStats(sims)
	coverage := s.scorer.CoverageScore(sims, in.GenreWeights, in.MoodWeights, s.cat)
	distribution := s.scorer.GenreDistribution(sims, s.cat, s.cfg.DistributionThreshold)
	weak := s.scorer.WeakCategories(sims, s.cat, s.cfg.WeakThreshold)

	s.log.Info("Analysis complete",
		"session_id", in.SessionID.String(),
		"recommendations", len(recs),
		"coverage_score", coverage,
		"weak_categories", len(weak),
	)

	return &Result{
		Recommendations:   recs,
		Stats:             stats,
		CoverageScore:     coverage,
		GenreDistribution: distribution,
		WeakCategories:    weak,
		Model:             s.store.Model(),
		CatalogSize:       s.cat.Len(),
	}, nil
}

// EndSession drops the session's query memo.
func (s *Service) EndSession(id uuid.UUID) {
	s.sessions.End(id)
}

// Catalog exposes the loaded catalog for the read-only catalog endpoint.
func (s *Service) Catalog() *catalog.Catalog {
	return s.cat
}
