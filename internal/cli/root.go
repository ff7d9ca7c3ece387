package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/compass/internal/logging"
	"github.com/ppiankov/compass/internal/model"
)

// Version is set at build time
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "compass",
	Short: "Compass - similarity clustering for modeling exercise submissions",
	Long: `Compass groups the elements of student modeling submissions (class,
activity and drag-and-drop diagrams) into clusters of equivalent elements.

Elements that are similar enough to an existing cluster's representative
join that cluster; everything else founds a new one. Cluster statistics
show which parts of a submission are corroborated by other students.

Compass reports similarity. It does not grade.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "compass %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.compass/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".compass"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// COMPASS_CACHE_DIR maps to cache.dir
	viper.SetEnvPrefix("COMPASS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults, the config file, environment and bound flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	registerDefaults(cfg)
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// registerDefaults makes every key known to viper so AutomaticEnv can
// override keys that are absent from the config file.
func registerDefaults(cfg *model.Config) {
	viper.SetDefault("clustering.min_corroborating_submissions", cfg.Clustering.MinCorroboratingSubmissions)
	viper.SetDefault("clustering.max_matrix_submissions", cfg.Clustering.MaxMatrixSubmissions)
	viper.SetDefault("concurrency.workers", cfg.Concurrency.Workers)
	viper.SetDefault("concurrency.matrix_workers", cfg.Concurrency.MatrixWorkers)
	viper.SetDefault("rate_limiting.submissions_per_second", cfg.RateLimiting.SubmissionsPerSecond)
	viper.SetDefault("rate_limiting.burst_size", cfg.RateLimiting.BurstSize)
	viper.SetDefault("cache.enabled", cfg.Cache.Enabled)
	viper.SetDefault("cache.dir", cfg.Cache.Dir)
	viper.SetDefault("cache.memory_ttl", cfg.Cache.MemoryTTL)
	viper.SetDefault("cache.disk_ttl", cfg.Cache.DiskTTL)
	viper.SetDefault("output.verbose", cfg.Output.Verbose)
	viper.SetDefault("output.include_footer", cfg.Output.IncludeFooter)
	viper.SetDefault("output.top_clusters", cfg.Output.TopClusters)
}

func newLogger(cfg *model.Config) *log.Logger {
	return logging.Stderr(cfg.Output.Verbose)
}
