package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the distillation tool.
type Config struct {
	Targets TargetsConfig `yaml:"targets"`
	Loss    LossConfig    `yaml:"loss"`
	Import  ImportConfig  `yaml:"import"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// TargetsConfig holds teacher-target generation hyperparameters.
type TargetsConfig struct {
	IICoeff       float64 `yaml:"ii_coeff"`       // weight of image-image similarity in the cost
	TTCoeff       float64 `yaml:"tt_coeff"`       // weight of text-text similarity in the cost
	SinkhornEps   float64 `yaml:"sinkhorn_eps"`   // balancing temperature
	SinkhornIters int     `yaml:"sinkhorn_iters"` // balancing iterations
	RemoveDiag    float64 `yaml:"remove_diag"`    // diagonal suppression factor (0 or 1)
	SigmoidTarget bool    `yaml:"sigmoid_target"` // emit [-1, 1] targets for sigmoid losses
}

// LossConfig holds semantic-alignment loss configuration.
type LossConfig struct {
	Reduction string `yaml:"reduction"`  // "mean", "sum" or "none"
	LegacySum bool   `yaml:"legacy_sum"` // reproduce the old sum-as-mean reduction
}

// ImportConfig holds embedding import configuration.
type ImportConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// StoreConfig holds embedding store configuration.
type StoreConfig struct {
	Path string `yaml:"path"` // overrides the default .distill/store.db
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Targets: TargetsConfig{
			IICoeff:       1.0,
			TTCoeff:       1.0,
			SinkhornEps:   0.05,
			SinkhornIters: 5,
			RemoveDiag:    1.0,
			SigmoidTarget: false,
		},
		Loss: LossConfig{
			Reduction: "mean",
			LegacySum: false,
		},
		Import: ImportConfig{
			Includes: []string{"**/*.json"},
			Excludes: []string{"**/.distill/**", "**/node_modules/**", "**/.git/**"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for distill.yaml).
func LoadFromDir(dir string) (*Config, error) {
	// Try distill.yaml in the directory
	path := filepath.Join(dir, "distill.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	// Try .distill/config.yaml
	path = filepath.Join(dir, ".distill", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	// Return defaults
	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StoreDBPath returns the path to the embedding store database.
func StoreDBPath(dir string) string {
	return filepath.Join(dir, ".distill", "store.db")
}

// EnsureStateDir ensures the .distill directory exists.
func EnsureStateDir(dir string) error {
	stateDir := filepath.Join(dir, ".distill")
	return os.MkdirAll(stateDir, 0755)
}
