package model

import "time"

// Config is the complete Concordia configuration
type Config struct {
	Detection   DetectionConfig   `yaml:"detection" mapstructure:"detection"`
	Similarity  SimilarityConfig  `yaml:"similarity" mapstructure:"similarity"`
	Repetition  RepetitionConfig  `yaml:"repetition" mapstructure:"repetition"`
	Oracle      OracleConfig      `yaml:"oracle" mapstructure:"oracle"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// DetectionConfig tunes candidate pair generation and judgment dispatch.
// The divergence thresholds are empirical, not derived from a model;
// they are configuration precisely so deployments can retune them.
type DetectionConfig struct {
	MaxPairs         int     `yaml:"max_pairs" mapstructure:"max_pairs"`
	BatchSize        int     `yaml:"batch_size" mapstructure:"batch_size"`
	RelativeValueGap float64 `yaml:"relative_value_gap" mapstructure:"relative_value_gap"` // Relative numeric divergence
	AbsoluteValueGap float64 `yaml:"absolute_value_gap" mapstructure:"absolute_value_gap"` // Absolute numeric divergence
	PercentPointGap  float64 `yaml:"percent_point_gap" mapstructure:"percent_point_gap"`   // Gap when either side is a percentage
	DomainPercentGap float64 `yaml:"domain_percent_gap" mapstructure:"domain_percent_gap"` // Gap for the domain-keyword percent rule
}

// SimilarityConfig tunes the optional similarity prefilter
type SimilarityConfig struct {
	Enabled        bool    `yaml:"enabled" mapstructure:"enabled"`
	Threshold      float64 `yaml:"threshold" mapstructure:"threshold"`
	NumHashes      int     `yaml:"num_hashes" mapstructure:"num_hashes"`
	ShingleSize    int     `yaml:"shingle_size" mapstructure:"shingle_size"`
	MinViablePairs int     `yaml:"min_viable_pairs" mapstructure:"min_viable_pairs"` // Below this, fall back to the heuristic generator
}

// RepetitionConfig tunes the repeated-passage detector
type RepetitionConfig struct {
	MinLength int `yaml:"min_length" mapstructure:"min_length"` // Segments shorter than this are ignored
	MinCount  int `yaml:"min_count" mapstructure:"min_count"`   // Occurrences required to report
}

// OracleConfig configures the semantic judgment provider
type OracleConfig struct {
	Provider          string        `yaml:"provider" mapstructure:"provider"` // openai, deepseek, ollama, "" (disabled)
	Model             string        `yaml:"model" mapstructure:"model"`
	APIKey            string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"` // Per-call timeout
	MaxTokens         int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
}

// StoreConfig configures fact/conflict persistence
type StoreConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir" mapstructure:"dir"` // Disk tier directory
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ConcurrencyConfig bounds parallelism outside the judgment batches
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers" mapstructure:"batch_workers"` // Concurrent documents in batch mode
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Detection: DetectionConfig{
			MaxPairs:         300,
			BatchSize:        10,
			RelativeValueGap: 0.2,
			AbsoluteValueGap: 1.0,
			PercentPointGap:  10.0,
			DomainPercentGap: 15.0,
		},
		Similarity: SimilarityConfig{
			Enabled:        false,
			Threshold:      0.3,
			NumHashes:      128,
			ShingleSize:    2,
			MinViablePairs: 1,
		},
		Repetition: RepetitionConfig{
			MinLength: 20,
			MinCount:  3,
		},
		Oracle: OracleConfig{
			Provider:          "",
			Model:             "",
			Timeout:           60 * time.Second,
			MaxTokens:         1024,
			RequestsPerSecond: 10,
			Burst:             10,
		},
		Store: StoreConfig{
			Enabled: true,
			Dir:     "",
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 4,
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}
