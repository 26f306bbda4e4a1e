package app

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/cinematch-backend/internal/platform/envutil"
	"github.com/yungbote/cinematch-backend/internal/platform/logger"
)

type Config struct {
	// Score blend. Normalized by the scorer at construction.
	Alpha float64
	Beta  float64
	Gamma float64

	TopN                  int
	WeakThreshold         float64
	DistributionThreshold float64

	CatalogSource string // "csv" | "sqlite"
	CatalogPath   string

	BatchSize         int
	EncodeConcurrency int

	// "" disables embedding memoization; "memory" uses the FIFO cache,
	// "redis" the shared one.
	CacheBackend string
	CacheMaxSize int

	Matcher string // "substring" | "exact" | "tokenset"
}

// fileConfig is the optional YAML overlay; only set fields override env.
type fileConfig struct {
	Alpha *float64 `yaml:"alpha"`
	Beta  *float64 `yaml:"beta"`
	Gamma *float64 `yaml:"gamma"`

	TopN                  *int     `yaml:"top_n"`
	WeakThreshold         *float64 `yaml:"weak_threshold"`
	DistributionThreshold *float64 `yaml:"distribution_threshold"`

	CatalogSource *string `yaml:"catalog_source"`
	CatalogPath   *string `yaml:"catalog_path"`

	BatchSize         *int `yaml:"batch_size"`
	EncodeConcurrency *int `yaml:"encode_concurrency"`

	CacheBackend *string `yaml:"cache_backend"`
	CacheMaxSize *int    `yaml:"cache_max_size"`

	Matcher *string `yaml:"matcher"`
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Alpha:                 envutil.Float("SCORE_ALPHA", 0.5),
		Beta:                  envutil.Float("SCORE_BETA", 0.3),
		Gamma:                 envutil.Float("SCORE_GAMMA", 0.2),
		TopN:                  envutil.Int("TOP_N", 3),
		WeakThreshold:         envutil.Float("WEAK_CATEGORY_THRESHOLD", 0.4),
		DistributionThreshold: envutil.Float("DISTRIBUTION_THRESHOLD", 0.5),
		CatalogSource:         envutil.Str("CATALOG_SOURCE", "csv"),
		CatalogPath:           envutil.Str("CATALOG_PATH", "data/films_catalog.csv"),
		BatchSize:             envutil.Int("EMBED_BATCH_SIZE", 32),
		EncodeConcurrency:     envutil.Int("EMBED_CONCURRENCY", 4),
		CacheBackend:          envutil.Str("EMBED_CACHE_BACKEND", ""),
		CacheMaxSize:          envutil.Int("EMBED_CACHE_MAX_SIZE", 100),
		Matcher:               envutil.Str("TAG_MATCHER", "substring"),
	}

	path := strings.TrimSpace(os.Getenv("CINEMATCH_CONFIG"))
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
		log.Info("Config file applied", "path", path)
	}

	switch cfg.CatalogSource {
	case "csv", "sqlite":
	default:
		return Config{}, fmt.Errorf("config: unknown catalog source %q", cfg.CatalogSource)
	}
	switch cfg.CacheBackend {
	case "", "memory", "redis":
	default:
		return Config{}, fmt.Errorf("config: unknown cache backend %q", cfg.CacheBackend)
	}

	log.Info("Config loaded",
		"alpha", cfg.Alpha, "beta", cfg.Beta, "gamma", cfg.Gamma,
		"top_n", cfg.TopN,
		"catalog_source", cfg.CatalogSource,
		"catalog_path", cfg.CatalogPath,
		"cache_backend", cfg.CacheBackend,
		"matcher", cfg.Matcher,
	)
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if fc.Alpha != nil {
		c.Alpha = *fc.Alpha
	}
	if fc.Beta != nil {
		c.Beta = *fc.Beta
	}
	if fc.Gamma != nil {
		c.Gamma = *fc.Gamma
	}
	if fc.TopN != nil {
		c.TopN = *fc.TopN
	}
	if fc.WeakThreshold != nil {
		c.WeakThreshold = *fc.WeakThreshold
	}
	if fc.DistributionThreshold != nil {
		c.DistributionThreshold = *fc.DistributionThreshold
	}
	if fc.CatalogSource != nil {
		c.CatalogSource = *fc.CatalogSource
	}
	if fc.CatalogPath != nil {
		c.CatalogPath = *fc.CatalogPath
	}
	if fc.BatchSize != nil {
		c.BatchSize = *fc.BatchSize
	}
	if fc.EncodeConcurrency != nil {
		c.EncodeConcurrency = *fc.EncodeConcurrency
	}
	if fc.CacheBackend != nil {
		c.CacheBackend = *fc.CacheBackend
	}
	if fc.CacheMaxSize != nil {
		c.CacheMaxSize = *fc.CacheMaxSize
	}
	if fc.Matcher != nil {
		c.Matcher = *fc.Matcher
	}
	return nil
}
