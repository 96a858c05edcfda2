package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"distill/config"
	"distill/internal/adapter/store"
	"distill/internal/distill"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "distill",
	Short: "Self-distillation target toolkit for CLIP-style remote-sensing models",
	Long: `distill manages frozen teacher embeddings and turns them into soft
training targets via entropic optimal transport. It also scores semantic
alignment and retrieval accuracy of stored embedding batches.

Example usage:
  distill import ./dumps           # Import embedding dump files
  distill targets -i img -t txt    # Compute teacher targets for a pair
  distill accuracy -i img -t txt   # Retrieval accuracy of a pair`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./distill.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return cfg
}

// GetRootDir returns the resolved root directory.
func GetRootDir() string {
	return rootDir
}

// openStore opens the embedding store below the root directory, creating
// the state directory if needed.
func openStore() (*store.BoltStore, error) {
	path := cfg.Store.Path
	if path == "" {
		if err := config.EnsureStateDir(rootDir); err != nil {
			return nil, fmt.Errorf("failed to create .distill directory: %w", err)
		}
		path = config.StoreDBPath(rootDir)
	}
	st, err := store.NewBoltStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding store: %w", err)
	}
	return st, nil
}

// targetConfig maps the configuration file onto the generator's knobs.
func targetConfig(c *config.Config) distill.TargetConfig {
	return distill.TargetConfig{
		IICoeff:       c.Targets.IICoeff,
		TTCoeff:       c.Targets.TTCoeff,
		SinkhornEps:   c.Targets.SinkhornEps,
		SinkhornIters: c.Targets.SinkhornIters,
		RemoveDiag:    c.Targets.RemoveDiag,
		SigmoidTarget: c.Targets.SigmoidTarget,
	}
}
