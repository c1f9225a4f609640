package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/healthprep-cli/internal/config"
	"github.com/KaramelBytes/healthprep-cli/internal/pipeline"
	"github.com/KaramelBytes/healthprep-cli/internal/visual"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Run flags (override config if set)
	flagInput        string
	flagDelimiter    string
	flagSheet        string
	flagPreviewRows  int
	flagReport       string
	flagReportFormat string
	flagChartsDir    string
	flagNoCharts     bool

	// Loaded configuration
	cfg    *cfgpkg.Global
	cfgErr error
)

var rootCmd = &cobra.Command{
	Use:   "healthprep",
	Short: "Clean, chart and screen a messy healthcare dataset",
	Long: `healthprep loads a tabular healthcare dataset (CSV, TSV or XLSX), repairs common
data-entry defects, renders exploratory charts, flags Cholesterol outliers by
z-score and prints summary statistics for every numeric column.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, pipeline.All, "")
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.healthprep/config.yaml)")
	pf.BoolVar(&debug, "debug", false, "enable debug output")
	pf.StringVarP(&flagInput, "input", "i", "", "input dataset (.csv, .tsv or .xlsx; overrides config)")
	pf.StringVar(&flagDelimiter, "delimiter", "", "field delimiter for text input: ',', ';', '|' or 'tab'")
	pf.StringVar(&flagSheet, "sheet", "", "XLSX worksheet name (default first sheet)")
	pf.IntVar(&flagPreviewRows, "preview-rows", 0, "rows shown in the load and clean previews (overrides config)")
	pf.StringVar(&flagReport, "report", "", "write a run report to this path")
	pf.StringVar(&flagReportFormat, "report-format", "", "run report format: json|yaml|markdown")

	rootCmd.Flags().StringVar(&flagChartsDir, "charts-dir", "", "directory for PNG charts (overrides config)")
	rootCmd.Flags().BoolVar(&flagNoCharts, "no-charts", false, "skip chart rendering")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: config subcommands can still run
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg, cfgErr = nil, err
		return
	}
	cfg, cfgErr = c, nil

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("input") && flagInput != "" {
		cfg.InputPath = flagInput
	}
	if f.Changed("delimiter") {
		cfg.Delimiter = flagDelimiter
	}
	if f.Changed("sheet") {
		cfg.Sheet = flagSheet
	}
	if f.Changed("preview-rows") && flagPreviewRows > 0 {
		cfg.PreviewRows = flagPreviewRows
	}
	if f.Changed("report") {
		cfg.ReportPath = flagReport
	}
	if f.Changed("report-format") && flagReportFormat != "" {
		cfg.ReportFormat = flagReportFormat
	}
	lf := rootCmd.Flags()
	if lf.Changed("charts-dir") && flagChartsDir != "" {
		cfg.ChartsDir = flagChartsDir
	}
	if lf.Changed("no-charts") && flagNoCharts {
		cfg.ChartsEnabled = false
	}
}

// runPipeline runs the selected stages with the effective configuration.
// An empty column falls back to the configured anomaly column.
func runPipeline(cmd *cobra.Command, stages pipeline.Stage, column string) error {
	if cfg == nil {
		if cfgErr != nil {
			return fmt.Errorf("config: %w", cfgErr)
		}
		return fmt.Errorf("config not loaded")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	delim, err := parseDelimiter(cfg.Delimiter)
	if err != nil {
		return err
	}
	if column == "" {
		column = cfg.AnomalyColumn
	}
	opt := pipeline.Options{
		Input:         cfg.InputPath,
		PreviewRows:   cfg.PreviewRows,
		AnomalyColumn: column,
		Stages:        stages,
		ReportPath:    cfg.ReportPath,
		ReportFormat:  cfg.ReportFormat,
		Debug:         debug,
		Out:           cmd.OutOrStdout(),
	}
	opt.Load.Delimiter = delim
	opt.Load.Sheet = cfg.Sheet
	if stages&pipeline.Visualize != 0 && cfg.ChartsEnabled {
		opt.Surface = &visual.PNGSurface{Dir: cfg.ChartsDir, Width: cfg.ChartWidth, Height: cfg.ChartHeight}
	}
	if debug {
		fmt.Fprintf(cmd.ErrOrStderr(), "input=%s delimiter=%q sheet=%q charts=%v report=%q\n",
			opt.Input, cfg.Delimiter, opt.Load.Sheet, opt.Surface != nil, opt.ReportPath)
	}
	_, err = pipeline.Run(opt)
	return err
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", `\t`, "tab", "TAB":
		return '\t', nil
	case ";":
		return ';', nil
	case "|":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %q (use ',', ';', '|' or 'tab')", s)
	}
}
