package main

import (
	"github.com/spf13/cobra"

	"github.com/kmandel/bindery/version"
)

var (
	cfgFile string
	homeDir string
)

var rootCmd = &cobra.Command{
	Use:   "bindery",
	Short: "Composite PDF assembler with a resolved table of contents",
	Long: `Bindery binds a directory of source documents into one composite PDF.

The pipeline includes:
  - Source discovery with document title extraction
  - Section join against mapping and category sources
  - Serialized external rendering to PDF
  - Two-pass TOC layout with resolved page numbers
  - Outline and clickable TOC links in the final document`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.bindery/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "bindery home directory (default: ~/.bindery)",
	)

	rootCmd.AddCommand(versionCmd)
}
