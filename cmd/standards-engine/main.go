// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the standards-engine CLI.
// Implements: prd001-ingestion, prd002-scanning, prd003-structuring,
//             prd004-validation, prd005-orchestration, prd006-store
//             (CLI surface).
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the standards-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "standards-engine",
	Short: "Extract structured standards from scanned curriculum documents",
	Long: `standards-engine converts page-delimited text extracted from scanned
educational standards documents into structured, validated records. Each
record carries a performance expectation code, its performance statement,
and the three pedagogical dimensions attached to it.

Each pipeline stage is a subcommand: scan discovers codes, topics maps
topic spans, extract structures full records, validate checks record
files, and store manages the local standards index.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./standards-engine.yaml or ~/.config/standards-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("standards-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "standards-engine"))
		}
	}

	viper.SetEnvPrefix("STANDARDS_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
