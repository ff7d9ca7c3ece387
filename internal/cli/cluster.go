package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/compass/internal/pipeline"
)

var (
	outJSON        string
	outMD          string
	clusterTimeout time.Duration
	concurrency    int
	rateLimit      float64
	noCache        bool
	cacheDir       string
	noFooter       bool
)

var clusterCmd = &cobra.Command{
	Use:   "cluster <dir|file>...",
	Short: "Cluster the elements of a set of submissions",
	Long: `Cluster loads every submission file (*.yaml, *.yml, *.json) under the
given paths, scores each pair of submissions and groups equivalent elements
into clusters.

All submissions of a run must belong to the same exercise.

Example:
  compass cluster ./submissions
  compass cluster ./submissions --json report.json --md report.md
  compass cluster a.yaml b.yaml c.yaml --concurrency 4 --no-cache`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCluster,
}

func init() {
	rootCmd.AddCommand(clusterCmd)

	clusterCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path")
	clusterCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path")
	clusterCmd.Flags().DurationVar(&clusterTimeout, "timeout", 10*time.Minute, "total timeout for the run")
	clusterCmd.Flags().IntVar(&concurrency, "concurrency", 0, "submissions indexed in parallel (default from config)")
	clusterCmd.Flags().Float64Var(&rateLimit, "rate", 0, "max submissions indexed per second, 0 for unlimited")
	clusterCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the similarity cache")
	clusterCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "similarity cache directory")
	clusterCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runCluster(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}
	if flags.Changed("rate") {
		cfg.RateLimiting.SubmissionsPerSecond = rateLimit
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if cacheDir != "" {
		cfg.Cache.Dir = cacheDir
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	logger := newLogger(cfg)
	logger.Debug("starting run",
		"paths", args,
		"workers", cfg.Concurrency.Workers,
		"cache", cfg.Cache.Enabled,
		"timeout", clusterTimeout)

	ctx, cancel := context.WithTimeout(cmd.Context(), clusterTimeout)
	defer cancel()

	p := pipeline.NewPipeline(cfg, logger)
	report, err := p.Run(ctx, args)
	if err != nil {
		return fmt.Errorf("cluster: %w", err)
	}

	if err := p.RenderReport(report, outJSON, outMD); err != nil {
		return err
	}
	p.Renderer().RenderSummary(cmd.OutOrStdout(), report)

	if report.Totals.Failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d submissions failed\n", report.Totals.Failed, report.Totals.Submissions)
	}
	return nil
}
