package cmd

import (
	"github.com/KaramelBytes/healthprep-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var anomaliesCmd = &cobra.Command{
	Use:   "anomalies [column]",
	Short: "Load and clean the dataset, then list z-score outliers",
	Long:  "Flags rows whose value lies more than 3 standard deviations from the column mean. The column defaults to anomaly_column (Cholesterol).",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		column := ""
		if len(args) == 1 {
			column = args[0]
		}
		return runPipeline(cmd, pipeline.Detect, column)
	},
}

func init() {
	rootCmd.AddCommand(anomaliesCmd)
}
