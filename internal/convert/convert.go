// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert prepares fetched structures for docking by converting
// them to PDBQT. The chemistry lives entirely in the external Open Babel
// binary; this package only orchestrates it over a batch.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/dock-engine/internal/task"
	"github.com/pdiddy/dock-engine/pkg/types"
)

// Converter turns a source structure file into a PDBQT file. The external
// obabel backend implements this; tests substitute fakes.
type Converter interface {
	// ConvertLigand converts an SDF ligand at srcPath to PDBQT at destPath.
	ConvertLigand(ctx context.Context, srcPath, destPath string) error

	// ConvertReceptor converts a PDB receptor at srcPath to a rigid PDBQT
	// at destPath.
	ConvertReceptor(ctx context.Context, srcPath, destPath string) error
}

// BatchResult holds the outcome of a batch preparation run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of structures processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any structure failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// status is the per-item outcome of one conversion.
type status int

const (
	statusConverted status = iota
	statusSkipped
	statusFailed
)

// convertOne converts a single structure if its PDBQT does not already
// exist. A missing source file is a failure pointing at the fetch stage.
func convertOne(ctx context.Context, c Converter, id string, ligand bool, outputDir string, w io.Writer) status {
	slug := task.Slug(id)

	var srcPath, destPath string
	var doConvert func(context.Context, string, string) error
	if ligand {
		srcPath = filepath.Join(outputDir, task.LigandsDir, slug+".sdf")
		destPath = filepath.Join(outputDir, task.LigandsDir, slug+task.StructExt)
		doConvert = c.ConvertLigand
	} else {
		srcPath = filepath.Join(outputDir, task.ReceptorsDir, slug+".pdb")
		destPath = filepath.Join(outputDir, task.ReceptorsDir, slug+task.StructExt)
		doConvert = c.ConvertReceptor
	}

	if _, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", slug)
		return statusSkipped
	}

	if _, err := os.Stat(srcPath); err != nil {
		fmt.Fprintf(w, "failed:  %s (source %s missing; run fetch first)\n", slug, filepath.Base(srcPath))
		return statusFailed
	}

	if err := doConvert(ctx, srcPath, destPath); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", slug, err)
		return statusFailed
	}

	fmt.Fprintf(w, "converted: %s\n", slug)
	return statusConverted
}

// PrepareBatch converts every distinct ligand and receptor referenced by
// the pairs, printing per-item status and returning a summary. Individual
// failures are contained so one bad structure never blocks the rest.
func PrepareBatch(ctx context.Context, c Converter, pairs []types.Pair, outputDir string, w io.Writer) BatchResult {
	type target struct {
		id     string
		ligand bool
	}

	var targets []target
	seen := make(map[target]bool)
	for _, p := range pairs {
		for _, t := range []target{{p.Ligand, true}, {p.Receptor, false}} {
			if !seen[t] {
				seen[t] = true
				targets = append(targets, t)
			}
		}
	}

	var result BatchResult
	for _, t := range targets {
		switch convertOne(ctx, c, t.id, t.ligand, outputDir, w) {
		case statusConverted:
			result.Converted++
		case statusSkipped:
			result.Skipped++
		case statusFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}
