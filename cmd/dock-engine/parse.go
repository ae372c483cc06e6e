// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dock-engine/internal/report"
)

var parseCmd = &cobra.Command{
	Use:   "parse <docking_results.csv>",
	Short: "Re-extract poses from an existing raw dataset",
	Long: `Parse reads a raw dataset written by a previous dock run and re-runs
pose extraction over every row, writing a fresh pose dataset next to the
input. Use it to rebuild the pose dataset after an extractor fix without
re-running the docking binary.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("poses", "", "pose dataset output path (default: docking_poses.csv next to the input)")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	outcomes, err := report.ReadRaw(args[0])
	if err != nil {
		return err
	}

	posePath, _ := cmd.Flags().GetString("poses")
	if posePath == "" {
		posePath = siblingPath(args[0], poseDatasetFile)
	}

	poses, extractErr := report.BuildPoses(outcomes)
	if err := report.WritePoses(poses, posePath); err != nil {
		return err
	}
	fmt.Printf("Pose dataset: %s (%d poses from %d raw rows)\n", posePath, len(poses), len(outcomes))
	return extractErr
}

// siblingPath returns name placed in the same directory as ref.
func siblingPath(ref, name string) string {
	return filepath.Join(filepath.Dir(ref), name)
}
