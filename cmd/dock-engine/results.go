// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dock-engine/internal/store"
	"github.com/pdiddy/dock-engine/pkg/types"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Query extracted poses from the pose index",
	Long: `Results queries the SQLite pose index written by dock runs. Poses are
ordered by ascending predicted affinity (strongest binding first) and can
be filtered by receptor, by ligand, or down to each run's rank-1 pose.`,
	RunE: runResults,
}

func init() {
	resultsCmd.Flags().String("out", "vina_results", "output directory containing the index")
	resultsCmd.Flags().String("receptor", "", "filter by receptor identifier")
	resultsCmd.Flags().String("ligand", "", "filter by ligand identifier")
	resultsCmd.Flags().Bool("best", false, "only each run's rank-1 pose")
	resultsCmd.Flags().Int("max-results", 20, "maximum number of poses to return")
	resultsCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(resultsCmd)
}

func runResults(cmd *cobra.Command, args []string) error {
	outputDir := stringSetting(cmd, "out", "output_dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	s, err := store.Open(types.StoreConfig{OutputDir: outputDir, MaxResults: maxResults})
	if err != nil {
		return err
	}
	defer s.Close()

	receptor, _ := cmd.Flags().GetString("receptor")
	ligand, _ := cmd.Flags().GetString("ligand")
	bestOnly, _ := cmd.Flags().GetBool("best")

	rows, err := s.Poses(cmd.Context(), store.QueryOptions{
		Receptor:   receptor,
		Ligand:     ligand,
		BestOnly:   bestOnly,
		MaxResults: maxResults,
	})
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No poses found.")
		return nil
	}
	for _, r := range rows {
		seed := "-"
		if r.Seed != nil {
			seed = strconv.Itoa(*r.Seed)
		}
		fmt.Printf("%-12s %-12s pose %-3d %8.3f kcal/mol  rmsd %.3f/%.3f  seed %s\n",
			r.Receptor, r.Ligand, r.Pose, r.Affinity, r.RMSDLower, r.RMSDUpper, seed)
	}
	return nil
}
