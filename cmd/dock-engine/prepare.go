package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dock-engine/internal/convert"
	"github.com/pdiddy/dock-engine/internal/report"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare <pairs.csv>",
	Short: "Convert fetched structures to PDBQT",
	Long: `Prepare converts fetched source structures into the PDBQT files the
docking binary consumes: SDF ligands gain hydrogens and Gasteiger charges,
PDB receptors become rigid PDBQT. Conversion runs through the external
Open Babel binary; structures that already have a PDBQT are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrepare,
}

func init() {
	prepareCmd.Flags().String("out", "vina_results", "output directory for batch artifacts")

	rootCmd.AddCommand(prepareCmd)
}

func runPrepare(cmd *cobra.Command, args []string) error {
	pairs, err := report.ReadPairs(args[0])
	if err != nil {
		return err
	}

	converter, err := convert.NewObabelConverter()
	if err != nil {
		return err
	}

	outputDir := stringSetting(cmd, "out", "output_dir")
	result := convert.PrepareBatch(cmd.Context(), converter, pairs, outputDir, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d structure(s) failed conversion", result.Failed)
	}
	return nil
}
