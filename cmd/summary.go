package cmd

import (
	"github.com/KaramelBytes/healthprep-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Load and clean the dataset, then print summary statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, pipeline.Summarize, "")
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
