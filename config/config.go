// Package config loads engine settings from YAML with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ieee0824/phonalign/cognate"
	"github.com/ieee0824/phonalign/correspondence"
	"github.com/ieee0824/phonalign/feature"
	"github.com/ieee0824/phonalign/similarity"
	"github.com/ieee0824/phonalign/wordsim"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PHONALIGN_"

// Config is the complete phonalign configuration, one section per component.
type Config struct {
	Inventory      InventoryConfig      `yaml:"inventory"`
	Segment        SegmentConfig        `yaml:"segment"`
	Features       FeaturesConfig       `yaml:"features"`
	Similarity     SimilarityConfig     `yaml:"similarity"`
	Align          AlignConfig          `yaml:"align"`
	Scoring        ScoringConfig        `yaml:"scoring"`
	Correspondence CorrespondenceConfig `yaml:"correspondence"`
	Cognate        CognateConfig        `yaml:"cognate"`
	Cache          CacheConfig          `yaml:"cache"`
	Log            LogConfig            `yaml:"log"`
	Matrix         MatrixConfig         `yaml:"matrix"`
}

// InventoryConfig locates the phonetic tables.
type InventoryConfig struct {
	Dir string `yaml:"dir"` // empty uses the embedded tables
}

// SegmentConfig controls segmentation.
type SegmentConfig struct {
	Ignorable   string `yaml:"ignorable"` // in addition to whitespace
	AttachTones bool   `yaml:"attach_tones"`
}

// FeaturesConfig enables conditional feature rules by name.
type FeaturesConfig struct {
	Rules []string `yaml:"rules"`
}

// SimilarityConfig selects the phone similarity metric.
type SimilarityConfig struct {
	Method   string   `yaml:"method"`
	Weights  string   `yaml:"weights"` // hierarchy or uniform
	Excluded []string `yaml:"excluded"`
}

// AlignConfig holds alignment scoring parameters.
type AlignConfig struct {
	GapScore float64 `yaml:"gap_score"`
}

// ScoringConfig controls word similarity scoring.
type ScoringConfig struct {
	Rules       []string           `yaml:"rules"`
	Factors     map[string]float64 `yaml:"factors"`
	InfoContent bool               `yaml:"info_content"`
	NGramOrder  int                `yaml:"ngram_order"`
}

// CorrespondenceConfig controls correspondence model estimation.
type CorrespondenceConfig struct {
	Alpha       float64 `yaml:"alpha"`
	ExcludeGaps bool    `yaml:"exclude_gaps"`
}

// CognateConfig controls cognate detection.
type CognateConfig struct {
	Method        string  `yaml:"method"`
	PThreshold    float64 `yaml:"p_threshold"`
	MaxIterations int     `yaml:"max_iterations"`
	NullSize      int     `yaml:"null_size"`
	Seed          uint64  `yaml:"seed"`
	Reduce        string  `yaml:"reduce"`
}

// CacheConfig bounds the memo caches. Zero disables a cache.
type CacheConfig struct {
	Features   int `yaml:"features"`
	Similarity int `yaml:"similarity"`
	Words      int `yaml:"words"`
	Tables     int `yaml:"tables"`
}

// LogConfig selects the log level and handler format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MatrixConfig controls the distance matrix computation.
type MatrixConfig struct {
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	var ruleNames []string
	for _, r := range wordsim.DefaultRules() {
		ruleNames = append(ruleNames, string(r.Name))
	}
	var featureRules []string
	for _, r := range feature.DefaultRules() {
		featureRules = append(featureRules, string(r))
	}
	cog := cognate.DefaultConfig()

	return &Config{
		Segment: SegmentConfig{
			AttachTones: true,
		},
		Features: FeaturesConfig{
			Rules: featureRules,
		},
		Similarity: SimilarityConfig{
			Method:  string(similarity.WeightedDice),
			Weights: string(similarity.HierarchyWeighting),
		},
		Align: AlignConfig{
			GapScore: -1,
		},
		Scoring: ScoringConfig{
			Rules:      ruleNames,
			NGramOrder: 3,
		},
		Correspondence: CorrespondenceConfig{
			Alpha:       cog.Alpha,
			ExcludeGaps: cog.ExcludeGaps,
		},
		Cognate: CognateConfig{
			Method:        string(cog.Method),
			PThreshold:    cog.PThreshold,
			MaxIterations: cog.MaxIterations,
			NullSize:      cog.NullSize,
			Seed:          cog.Seed,
			Reduce:        "mean",
		},
		Cache: CacheConfig{
			Features:   feature.DefaultCacheSize,
			Similarity: similarity.DefaultCacheSize,
			Words:      wordsim.DefaultCacheSize,
			Tables:     correspondence.DefaultStoreSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Matrix: MatrixConfig{
			Workers: 4,
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path, then with
// PHONALIGN_* environment variables. An empty path or a missing file keeps
// the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadYAMLFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := applyEnvironment(cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnvironment(cfg *Config) error {
	var errs []error
	str := func(name string, dst *string) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	list := func(name string, dst *[]string) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = splitList(v)
		}
	}
	num := func(name string, dst *int) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	float := func(name string, dst *float64) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(name string, dst *bool) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	str("INVENTORY_DIR", &cfg.Inventory.Dir)
	str("SEGMENT_IGNORABLE", &cfg.Segment.Ignorable)
	boolean("SEGMENT_ATTACH_TONES", &cfg.Segment.AttachTones)
	list("FEATURES_RULES", &cfg.Features.Rules)
	str("SIMILARITY_METHOD", &cfg.Similarity.Method)
	str("SIMILARITY_WEIGHTS", &cfg.Similarity.Weights)
	list("SIMILARITY_EXCLUDED", &cfg.Similarity.Excluded)
	float("ALIGN_GAP_SCORE", &cfg.Align.GapScore)
	list("SCORING_RULES", &cfg.Scoring.Rules)
	boolean("SCORING_INFO_CONTENT", &cfg.Scoring.InfoContent)
	num("SCORING_NGRAM_ORDER", &cfg.Scoring.NGramOrder)
	float("CORRESPONDENCE_ALPHA", &cfg.Correspondence.Alpha)
	boolean("CORRESPONDENCE_EXCLUDE_GAPS", &cfg.Correspondence.ExcludeGaps)
	str("COGNATE_METHOD", &cfg.Cognate.Method)
	float("COGNATE_P_THRESHOLD", &cfg.Cognate.PThreshold)
	num("COGNATE_MAX_ITERATIONS", &cfg.Cognate.MaxIterations)
	num("COGNATE_NULL_SIZE", &cfg.Cognate.NullSize)
	str("COGNATE_REDUCE", &cfg.Cognate.Reduce)
	if v := os.Getenv(EnvPrefix + "COGNATE_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sCOGNATE_SEED: %w", EnvPrefix, err))
		} else {
			cfg.Cognate.Seed = n
		}
	}
	num("CACHE_FEATURES", &cfg.Cache.Features)
	num("CACHE_SIMILARITY", &cfg.Cache.Similarity)
	num("CACHE_WORDS", &cfg.Cache.Words)
	num("CACHE_TABLES", &cfg.Cache.Tables)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	num("MATRIX_WORKERS", &cfg.Matrix.Workers)

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks every section, reporting all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := feature.ParseRules(c.Features.Rules); err != nil {
		errs = append(errs, fmt.Errorf("features: %w", err))
	}
	if _, err := similarity.ParseMethod(c.Similarity.Method); err != nil {
		errs = append(errs, fmt.Errorf("similarity: %w", err))
	}
	if _, err := similarity.ParseWeighting(c.Similarity.Weights); err != nil {
		errs = append(errs, fmt.Errorf("similarity: %w", err))
	}
	if c.Align.GapScore > 0 {
		errs = append(errs, fmt.Errorf("align: gap score %g must not be positive", c.Align.GapScore))
	}
	if _, err := c.ScoringRules(); err != nil {
		errs = append(errs, fmt.Errorf("scoring: %w", err))
	}
	if c.Scoring.NGramOrder < 2 || c.Scoring.NGramOrder > 3 {
		errs = append(errs, fmt.Errorf("scoring: n-gram order %d outside [2, 3]", c.Scoring.NGramOrder))
	}
	if _, err := c.CognateConfig(); err != nil {
		errs = append(errs, fmt.Errorf("cognate: %w", err))
	}
	if c.Cache.Features < 0 || c.Cache.Similarity < 0 || c.Cache.Words < 0 || c.Cache.Tables < 0 {
		errs = append(errs, errors.New("cache: sizes must not be negative"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log: unknown format %q", c.Log.Format))
	}
	if c.Matrix.Workers < 1 {
		errs = append(errs, fmt.Errorf("matrix: workers %d < 1", c.Matrix.Workers))
	}
	return errors.Join(errs...)
}

// ScoringRules resolves the configured deletion rules and factors.
func (c *Config) ScoringRules() ([]wordsim.Rule, error) {
	return wordsim.SelectRules(c.Scoring.Rules, c.Scoring.Factors)
}

// CognateConfig converts the cognate and correspondence sections.
func (c *Config) CognateConfig() (cognate.Config, error) {
	method, err := cognate.ParseMethod(c.Cognate.Method)
	if err != nil {
		return cognate.Config{}, err
	}
	var reduce correspondence.Reduce
	switch c.Cognate.Reduce {
	case "mean":
		reduce = correspondence.Mean
	case "sum":
		reduce = correspondence.Sum
	default:
		return cognate.Config{}, fmt.Errorf("unknown reduction %q", c.Cognate.Reduce)
	}
	cfg := cognate.Config{
		Method:        method,
		PThreshold:    c.Cognate.PThreshold,
		MaxIterations: c.Cognate.MaxIterations,
		NullSize:      c.Cognate.NullSize,
		Seed:          c.Cognate.Seed,
		Alpha:         c.Correspondence.Alpha,
		ExcludeGaps:   c.Correspondence.ExcludeGaps,
		Reduce:        reduce,
	}
	return cfg, cfg.Validate()
}

// SlogLevel parses the log level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(l.Level))
	return lvl, err
}
