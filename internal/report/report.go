// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report reads the input pair table and assembles the batch's two
// tabular artifacts: the raw dataset (one row per task) and the pose
// dataset (one row per extracted pose).
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pdiddy/dock-engine/internal/parse"
	"github.com/pdiddy/dock-engine/pkg/types"
)

// rawHeader are the raw dataset columns, one row per input pair.
var rawHeader = []string{"Receptor", "Ligand", "Config File", "Output File", "Vina Output"}

// poseHeader are the pose dataset columns, one row per extracted pose.
// Metadata columns are empty when the tool did not report a run block.
var poseHeader = []string{
	"Receptor", "Ligand", "Pose",
	"mode_kcal_mol", "affinity_rmsd_lb", "dist_from_best_mode_rmsd_ub",
	"Grid_X", "Grid_Y", "Grid_Z",
	"Size_X", "Size_Y", "Size_Z",
	"Grid_Space", "Exhaustiveness", "Seed",
}

// ReadPairs loads receptor/ligand pairs from a CSV file. The header must
// contain receptor and ligand columns (any order, extra columns ignored);
// values are whitespace-trimmed. An unreadable table or a row with an
// empty identifier is batch-fatal.
func ReadPairs(path string) ([]types.Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input table %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading input table %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("input table %s is empty", path)
	}

	recCol, ligCol := -1, -1
	for i, name := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "receptor":
			recCol = i
		case "ligand":
			ligCol = i
		}
	}
	if recCol < 0 || ligCol < 0 {
		return nil, fmt.Errorf("input table %s: header must contain receptor and ligand columns", path)
	}

	pairs := make([]types.Pair, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if len(row) <= recCol || len(row) <= ligCol {
			return nil, fmt.Errorf("input table %s row %d: too few columns", path, n+2)
		}
		p := types.Pair{
			Receptor: strings.TrimSpace(row[recCol]),
			Ligand:   strings.TrimSpace(row[ligCol]),
		}
		if p.Receptor == "" || p.Ligand == "" {
			return nil, fmt.Errorf("input table %s row %d: empty identifier", path, n+2)
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

// ReadRaw loads a previously written raw dataset so poses can be
// re-extracted without re-running the tool.
func ReadRaw(path string) ([]types.TaskOutcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening raw dataset %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading raw dataset %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("raw dataset %s is empty", path)
	}
	if len(rows[0]) != len(rawHeader) || rows[0][0] != rawHeader[0] {
		return nil, fmt.Errorf("raw dataset %s: unexpected header %v", path, rows[0])
	}

	outcomes := make([]types.TaskOutcome, 0, len(rows)-1)
	for _, row := range rows[1:] {
		outcomes = append(outcomes, types.TaskOutcome{
			Receptor:   row[0],
			Ligand:     row[1],
			ConfigPath: row[2],
			OutputPath: row[3],
			Raw:        row[4],
		})
	}
	return outcomes, nil
}

// WriteRaw persists the raw dataset in submission order. Row count always
// equals the input pair count, so the audit trail stays reproducible no
// matter how many tasks failed.
func WriteRaw(outcomes []types.TaskOutcome, path string) error {
	rows := make([][]string, 0, len(outcomes)+1)
	rows = append(rows, rawHeader)
	for _, o := range outcomes {
		rows = append(rows, []string{o.Receptor, o.Ligand, o.ConfigPath, o.OutputPath, o.Raw})
	}
	return writeCSV(path, rows)
}

// BuildPoses runs the extractor over every raw outcome, in raw-row order.
// A row whose text matches no pose pattern contributes zero records; a row
// whose matched fields fail numeric parsing contributes an error. All
// extraction errors are joined and returned alongside the records from
// the rows that did parse, so one defective row never hides the rest.
func BuildPoses(outcomes []types.TaskOutcome) ([]types.PoseRecord, error) {
	var records []types.PoseRecord
	var errs []error
	for _, o := range outcomes {
		recs, err := parse.Extract(o)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		records = append(records, recs...)
	}
	return records, errors.Join(errs...)
}

// WritePoses persists the pose dataset.
func WritePoses(records []types.PoseRecord, path string) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, poseHeader)
	for _, rec := range records {
		row := []string{
			rec.Receptor, rec.Ligand, strconv.Itoa(rec.Pose),
			formatNum(rec.Affinity), formatNum(rec.RMSDLower), formatNum(rec.RMSDUpper),
		}
		if m := rec.Metadata; m != nil {
			row = append(row,
				formatNum(m.GridX), formatNum(m.GridY), formatNum(m.GridZ),
				formatNum(m.SizeX), formatNum(m.SizeY), formatNum(m.SizeZ),
				formatNum(m.GridSpace), strconv.Itoa(m.Exhaustiveness), strconv.Itoa(m.Seed),
			)
		} else {
			row = append(row, "", "", "", "", "", "", "", "", "")
		}
		rows = append(rows, row)
	}
	return writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
