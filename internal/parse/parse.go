// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse extracts structured pose records and run metadata from the
// docking tool's free-text output.
//
// The tool's report is loosely structured: a rank-sorted pose table whose
// rows are "ordinal, affinity, RMSD lower bound, RMSD upper bound", plus a
// handful of optional single-occurrence header lines (grid geometry,
// exhaustiveness, random seed). Extraction is table-driven: one repeating
// pose-line pattern and an ordered list of metadata block patterns, each
// testable in isolation.
package parse

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/pdiddy/dock-engine/pkg/types"
)

// poseLineRe matches one pose table row: an ordinal followed by three
// signed decimals, anchored at line start so numeric noise inside
// unrelated log lines never matches. Whole-number fields may carry or
// omit a decimal part; internal whitespace is free-form.
var poseLineRe = regexp.MustCompile(
	`(?m)^[ \t]*(\d+)[ \t]+(-?\d+(?:\.\d+)?)[ \t]+(-?\d+(?:\.\d+)?)[ \t]+(-?\d+(?:\.\d+)?)[ \t]*$`)

// metaBlock pairs a metadata pattern with the field names its capture
// groups populate, in capture order.
type metaBlock struct {
	re     *regexp.Regexp
	fields []string
}

// metaBlocks lists the optional run metadata blocks in the order the tool
// prints them. Every block must match for the metadata to be reported;
// a partial header never yields partially populated metadata.
var metaBlocks = []metaBlock{
	{
		re: regexp.MustCompile(
			`(?m)^Grid center:\s*X\s+(-?\d+(?:\.\d+)?)\s+Y\s+(-?\d+(?:\.\d+)?)\s+Z\s+(-?\d+(?:\.\d+)?)`),
		fields: []string{"grid center X", "grid center Y", "grid center Z"},
	},
	{
		re: regexp.MustCompile(
			`(?m)^Grid size\s*:\s*X\s+(-?\d+(?:\.\d+)?)\s+Y\s+(-?\d+(?:\.\d+)?)\s+Z\s+(-?\d+(?:\.\d+)?)`),
		fields: []string{"grid size X", "grid size Y", "grid size Z"},
	},
	{
		re:     regexp.MustCompile(`(?m)^Grid space\s*:\s*(-?\d+(?:\.\d+)?)`),
		fields: []string{"grid spacing"},
	},
	{
		re:     regexp.MustCompile(`(?m)^Exhaustiveness\s*:\s*(\d+)`),
		fields: []string{"exhaustiveness"},
	},
	{
		// Appears either standalone ("Using random seed: N") or embedded
		// ("Performing docking (random seed: N)"), so no line anchor.
		re:     regexp.MustCompile(`(?i)random seed\s*:\s*(-?\d+)`),
		fields: []string{"random seed"},
	},
}

// Extract parses one outcome's raw text into zero or more pose records.
// No matching pose lines -- including the failure-marked text of a task
// whose invocation failed -- is not an error; it is the expected
// representation of "no result". A line that matches a pattern but whose
// field does not parse as a number is a defect in the pattern table and
// surfaces as an error.
func Extract(o types.TaskOutcome) ([]types.PoseRecord, error) {
	matches := poseLineRe.FindAllStringSubmatch(o.Raw, -1)
	if len(matches) == 0 {
		return nil, nil
	}

	meta, err := Metadata(o.Raw)
	if err != nil {
		return nil, fmt.Errorf("extracting %s vs %s: %w", o.Ligand, o.Receptor, err)
	}

	records := make([]types.PoseRecord, 0, len(matches))
	for _, m := range matches {
		pose, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("extracting %s vs %s: pose ordinal %q: %w", o.Ligand, o.Receptor, m[1], err)
		}
		affinity, err := parseFloat("affinity", m[2])
		if err != nil {
			return nil, fmt.Errorf("extracting %s vs %s: %w", o.Ligand, o.Receptor, err)
		}
		rmsdLB, err := parseFloat("RMSD lower bound", m[3])
		if err != nil {
			return nil, fmt.Errorf("extracting %s vs %s: %w", o.Ligand, o.Receptor, err)
		}
		rmsdUB, err := parseFloat("RMSD upper bound", m[4])
		if err != nil {
			return nil, fmt.Errorf("extracting %s vs %s: %w", o.Ligand, o.Receptor, err)
		}

		records = append(records, types.PoseRecord{
			Receptor:  o.Receptor,
			Ligand:    o.Ligand,
			Pose:      pose,
			Affinity:  affinity,
			RMSDLower: rmsdLB,
			RMSDUpper: rmsdUB,
			Metadata:  meta,
		})
	}
	return records, nil
}

// Metadata scans text for the run metadata blocks. It returns nil (and no
// error) unless every block matched; numeric failures on a matched block
// are reported as errors.
func Metadata(text string) (*types.RunMetadata, error) {
	var names, values []string
	for _, blk := range metaBlocks {
		m := blk.re.FindStringSubmatch(text)
		if m == nil {
			return nil, nil
		}
		names = append(names, blk.fields...)
		values = append(values, m[1:]...)
	}

	// Field order follows metaBlocks: center XYZ, size XYZ, spacing,
	// exhaustiveness, seed.
	floats := make([]float64, 7)
	for i := range floats {
		f, err := parseFloat(names[i], values[i])
		if err != nil {
			return nil, err
		}
		floats[i] = f
	}
	exhaustiveness, err := strconv.Atoi(values[7])
	if err != nil {
		return nil, fmt.Errorf("parsing %s %q: %w", names[7], values[7], err)
	}
	seed, err := strconv.Atoi(values[8])
	if err != nil {
		return nil, fmt.Errorf("parsing %s %q: %w", names[8], values[8], err)
	}

	return &types.RunMetadata{
		GridX:          floats[0],
		GridY:          floats[1],
		GridZ:          floats[2],
		SizeX:          floats[3],
		SizeY:          floats[4],
		SizeZ:          floats[5],
		GridSpace:      floats[6],
		Exhaustiveness: exhaustiveness,
		Seed:           seed,
	}, nil
}

func parseFloat(name, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s %q: %w", name, s, err)
	}
	return f, nil
}
