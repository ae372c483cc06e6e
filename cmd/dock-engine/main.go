// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the dock-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dock-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds values loaded from .secrets/ at startup.
var loadedSecrets map[string]string

const defaultUserAgent = "dock-engine/0.1"

// userAgent returns the HTTP User-Agent, with the operator's contact email
// appended when one is configured in .secrets/contact-email.
func userAgent() string {
	if email, ok := secrets.ContactEmail(loadedSecrets); ok {
		return defaultUserAgent + " (" + email + ")"
	}
	return defaultUserAgent
}

// rootCmd is the base command for the dock-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "dock-engine",
	Short: "Batch receptor/ligand docking over an external docking binary",
	Long: `dock-engine batch-executes a molecular docking tool over a table of
receptor/ligand pairs and turns its free-text output into analysis-ready
datasets.

Each pipeline stage is a subcommand: fetch downloads source structures
(PubChem ligands, AlphaFold receptors), prepare converts them to PDBQT via
Open Babel, dock runs the docking binary in parallel and extracts scored
poses, parse re-extracts poses from an existing raw dataset, and results
queries the pose index.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./dock-engine.yaml or ~/.config/dock-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("dock-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "dock-engine"))
		}
	}

	viper.SetEnvPrefix("DOCK_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// Flag-or-config helpers: an explicitly set flag wins, otherwise a value
// from the viper config file (if present), otherwise the flag default.

func floatSetting(cmd *cobra.Command, flag, key string) float64 {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetFloat64(key)
	}
	v, _ := cmd.Flags().GetFloat64(flag)
	return v
}

func intSetting(cmd *cobra.Command, flag, key string) int {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetInt(key)
	}
	v, _ := cmd.Flags().GetInt(flag)
	return v
}

func stringSetting(cmd *cobra.Command, flag, key string) string {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetString(key)
	}
	v, _ := cmd.Flags().GetString(flag)
	return v
}

func durationSetting(cmd *cobra.Command, flag, key string) time.Duration {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	v, _ := cmd.Flags().GetDuration(flag)
	return v
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
