package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/compass/internal/pipeline"
)

var compareCmd = &cobra.Command{
	Use:   "compare <fileA> <fileB>",
	Short: "Compare two submissions",
	Long: `Compare prints the similarity of two submissions and, for every
top-level element of the first, its best match in the second.

Example:
  compass compare alice.yaml bob.yaml`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		p := pipeline.NewPipeline(cfg, newLogger(cfg))
		cmp, err := p.Compare(args[0], args[1])
		if err != nil {
			return fmt.Errorf("compare: %w", err)
		}

		p.Renderer().RenderComparison(cmd.OutOrStdout(), cmp)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
