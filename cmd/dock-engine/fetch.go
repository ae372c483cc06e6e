// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dock-engine/internal/fetch"
	"github.com/pdiddy/dock-engine/internal/report"
	"github.com/pdiddy/dock-engine/pkg/types"
)

const (
	defaultFetchTimeout = 60 * time.Second
	defaultFetchDelay   = 1 * time.Second
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <pairs.csv>",
	Short: "Download source structures for receptor/ligand pairs",
	Long: `Fetch downloads every distinct structure referenced by the pair table:
ligands as 3-D SDF records from PubChem (by CID or compound name) and
receptors as AlphaFold model PDBs (by UniProt accession). Existing files
are skipped, so re-running fetch is cheap.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Duration("timeout", defaultFetchTimeout, "HTTP request timeout")
	fetchCmd.Flags().Duration("delay", defaultFetchDelay, "delay between consecutive downloads")
	fetchCmd.Flags().String("out", "vina_results", "output directory for batch artifacts")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	pairs, err := report.ReadPairs(args[0])
	if err != nil {
		return err
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: userAgent(),
		},
		DownloadDelay: mustDuration(cmd, "delay"),
		OutputDir:     stringSetting(cmd, "out", "output_dir"),
	}

	client := &http.Client{Timeout: cfg.Timeout}

	result := fetch.FetchBatch(cmd.Context(), client, pairs, cfg, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d structure(s) failed to download", result.Failed)
	}
	return nil
}

func mustDuration(cmd *cobra.Command, name string) time.Duration {
	d, _ := cmd.Flags().GetDuration(name)
	return d
}
