package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kmandel/bindery/internal/config"
	"github.com/kmandel/bindery/internal/home"
	"github.com/kmandel/bindery/internal/pipeline"
)

var (
	buildInputDir   string
	buildOutputFile string
	buildReportFile string
	buildKeep       bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the composite PDF",
	Long: `Build the composite PDF from the configured input directory.

Discovers source documents, joins them against the section sources,
renders each to PDF, and writes one composite with a resolved table of
contents, outline, and mismatch report.

Examples:
  bindery build                          # Use configured paths
  bindery build --input docs --output book.pdf
  bindery build --keep-intermediates     # Leave the run scratch in place`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := cm.Get()

		if buildInputDir != "" {
			cfg.Input.Dir = buildInputDir
		}
		if buildOutputFile != "" {
			cfg.Output.File = buildOutputFile
		}
		if buildReportFile != "" {
			cfg.Output.ReportFile = buildReportFile
		}
		if buildKeep {
			cfg.KeepIntermediates = true
		}

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel(cfg.LogLevel),
		}))

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		sum, err := pipeline.Run(cmd.Context(), pipeline.Options{
			Config: cfg,
			Home:   h,
			Logger: logger,
		})
		if err != nil {
			return err
		}

		fmt.Printf("wrote %s (%d pages, %d documents, %d mismatches)\n",
			sum.OutputPath, sum.TotalPages, sum.Assembled, len(sum.Mismatches))
		return nil
	},
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func init() {
	buildCmd.Flags().StringVar(&buildInputDir, "input", "", "Directory of source documents")
	buildCmd.Flags().StringVar(&buildOutputFile, "output", "", "Composite PDF path")
	buildCmd.Flags().StringVar(&buildReportFile, "report", "", "Mismatch report path")
	buildCmd.Flags().BoolVar(&buildKeep, "keep-intermediates", false, "Keep the run scratch directory")

	rootCmd.AddCommand(buildCmd)
}
