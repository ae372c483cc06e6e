// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dock-engine/internal/pool"
	"github.com/pdiddy/dock-engine/internal/report"
	"github.com/pdiddy/dock-engine/internal/store"
	"github.com/pdiddy/dock-engine/internal/vina"
	"github.com/pdiddy/dock-engine/pkg/types"
)

const (
	rawDatasetFile  = "docking_results.csv"
	poseDatasetFile = "docking_poses.csv"
)

var dockCmd = &cobra.Command{
	Use:   "dock <pairs.csv>",
	Short: "Run batch docking over receptor/ligand pairs",
	Long: `Dock reads receptor/ligand pairs from a CSV table, writes one tool
configuration artifact per pair, runs the docking binary across parallel
workers, and writes two datasets under the output directory: the raw
dataset (one row per pair, including failures) and the pose dataset (one
row per extracted pose). Extracted poses are also indexed into a SQLite
database for the results subcommand.

A failed pair never aborts the batch; it appears in the raw dataset with a
failure-marked output and contributes zero poses.`,
	Args: cobra.ExactArgs(1),
	RunE: runDock,
}

func init() {
	dockCmd.Flags().Float64("center-x", 10.819, "search-box center X coordinate")
	dockCmd.Flags().Float64("center-y", 2.607, "search-box center Y coordinate")
	dockCmd.Flags().Float64("center-z", -53.797, "search-box center Z coordinate")
	dockCmd.Flags().Float64("size-x", 60, "search-box size X (Angstroms)")
	dockCmd.Flags().Float64("size-y", 60, "search-box size Y (Angstroms)")
	dockCmd.Flags().Float64("size-z", 60, "search-box size Z (Angstroms)")
	dockCmd.Flags().Int("energy-range", 4, "maximum energy spread between best and worst pose (kcal/mol)")
	dockCmd.Flags().Int("exhaustiveness", 8, "search sampling effort")
	dockCmd.Flags().Int("seed", 0, "fixed random seed passed to the tool via --seed (omitted when unset)")
	dockCmd.Flags().String("vina", "vina", "path to the docking binary")
	dockCmd.Flags().String("out", "vina_results", "output directory for batch artifacts")
	dockCmd.Flags().Int("workers", 0, "parallel docking workers (default: one per logical CPU)")
	dockCmd.Flags().Duration("task-timeout", 0, "per-invocation timeout (0 = unbounded)")

	rootCmd.AddCommand(dockCmd)
}

func runDock(cmd *cobra.Command, args []string) error {
	cfg := types.RunConfig{
		CenterX:        floatSetting(cmd, "center-x", "box.center_x"),
		CenterY:        floatSetting(cmd, "center-y", "box.center_y"),
		CenterZ:        floatSetting(cmd, "center-z", "box.center_z"),
		SizeX:          floatSetting(cmd, "size-x", "box.size_x"),
		SizeY:          floatSetting(cmd, "size-y", "box.size_y"),
		SizeZ:          floatSetting(cmd, "size-z", "box.size_z"),
		EnergyRange:    intSetting(cmd, "energy-range", "docking.energy_range"),
		Exhaustiveness: intSetting(cmd, "exhaustiveness", "docking.exhaustiveness"),
		VinaPath:       stringSetting(cmd, "vina", "docking.vina_path"),
		OutputDir:      stringSetting(cmd, "out", "output_dir"),
		Workers:        intSetting(cmd, "workers", "docking.workers"),
		TaskTimeout:    durationSetting(cmd, "task-timeout", "docking.task_timeout"),
	}
	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetInt("seed")
		cfg.Seed = &seed
	}

	pairs, err := report.ReadPairs(args[0])
	if err != nil {
		return err
	}
	if err := vina.CheckBinary(cfg.VinaPath); err != nil {
		return err
	}

	result, err := pool.Run(cmd.Context(), pairs, cfg, vina.NewInvoker(), os.Stdout)
	if err != nil {
		return err
	}

	rawPath := filepath.Join(cfg.OutputDir, rawDatasetFile)
	if err := report.WriteRaw(result.Outcomes, rawPath); err != nil {
		return err
	}
	fmt.Printf("Raw dataset: %s (%d rows)\n", rawPath, len(result.Outcomes))

	poses, extractErr := report.BuildPoses(result.Outcomes)
	posePath := filepath.Join(cfg.OutputDir, poseDatasetFile)
	if err := report.WritePoses(poses, posePath); err != nil {
		return err
	}
	fmt.Printf("Pose dataset: %s (%d poses)\n", posePath, len(poses))

	s, err := store.Open(types.StoreConfig{OutputDir: cfg.OutputDir})
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.IndexBatch(cmd.Context(), result.Outcomes, poses); err != nil {
		return err
	}

	// Extraction defects surface after the datasets are safely on disk.
	return extractErr
}
