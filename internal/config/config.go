package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model. It captures where raw
// tweet sources live, where the database goes, and how scoring and
// aggregation runs behave.
type Config struct {
	Storage     StorageConfig     `yaml:"storage"`
	Sources     SourcesConfig     `yaml:"sources"`
	Scorer      ScorerConfig      `yaml:"scorer"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

type SourcesConfig struct {
	// Directory scanned for .csv and .json source files
	DataDir string `yaml:"dataDir"`
	// Extra token symbols tracked beyond the built-in allow-list
	ExtraTokens []string `yaml:"extraTokens"`
	// Normalization workers per ingestion run
	Workers int `yaml:"workers"`
}

type ScorerConfig struct {
	// Sentiment service endpoint. If empty, read from env SCORER_URL;
	// scoring is skipped when neither is set.
	URL string `yaml:"url"`
	// Tweets fetched per unscored batch
	BatchSize int `yaml:"batchSize"`
	// Rate limit on scorer calls
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type AggregationConfig struct {
	// Bucket widths recomputed per run, e.g. ["1m", "1h", "1d"]
	Intervals []string `yaml:"intervals"`
}

type MetricsConfig struct {
	// Prometheus listen address, e.g. ":9090". Empty disables the server.
	Addr string `yaml:"addr"`
}

type ScheduleConfig struct {
	// Cron expression for the run subcommand
	Cron string `yaml:"cron"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Storage:     StorageConfig{DBPath: "./sentiment_data.db"},
		Sources:     SourcesConfig{DataDir: "./data", Workers: 4},
		Scorer:      ScorerConfig{BatchSize: 1000, RPS: 50, Burst: 100},
		Aggregation: AggregationConfig{Intervals: []string{"1m", "1h", "1d"}},
		Metrics:     MetricsConfig{Addr: ""},
		Schedule:    ScheduleConfig{Cron: "*/15 * * * *"},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = os.Getenv("MEMEPULSE_DB")
	}
	if c.Sources.DataDir == "" {
		c.Sources.DataDir = os.Getenv("MEMEPULSE_DATA_DIR")
	}
	if c.Scorer.URL == "" {
		c.Scorer.URL = os.Getenv("SCORER_URL")
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = os.Getenv("METRICS_ADDR")
	}
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.ResolveEnv()
	if cfg.Sources.Workers <= 0 {
		cfg.Sources.Workers = 4
	}
	if cfg.Scorer.BatchSize <= 0 {
		cfg.Scorer.BatchSize = 1000
	}
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
