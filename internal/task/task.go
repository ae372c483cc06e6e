// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package task builds fully-specified docking tasks from receptor/ligand
// pairs and writes each task's configuration artifact.
package task

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/dock-engine/pkg/types"
)

const (
	// ReceptorsDir and LigandsDir are the fixed subfolders under the batch
	// root where prepared PDBQT structures live.
	ReceptorsDir = "receptors"
	LigandsDir   = "ligands"

	// DockingDir is the subfolder for tool output files.
	DockingDir = "docking"

	// StructExt is the structured-coordinate file extension the external
	// tool consumes and produces.
	StructExt = ".pdbqt"
)

// Slug returns a filesystem-safe form of an identifier: every byte outside
// [A-Za-z0-9._-] becomes '-'. Identifiers containing path separators can
// therefore never escape the batch root or collide with sibling
// directories through the artifact name.
func Slug(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

// stem is the shared ligand-then-receptor artifact name core, e.g.
// "aspirin_P00533".
func stem(receptor, ligand string) string {
	return Slug(ligand) + "_" + Slug(receptor)
}

// Plan resolves every path of a task without touching the filesystem.
func Plan(receptor, ligand string, cfg types.RunConfig) types.DockingTask {
	s := stem(receptor, ligand)
	return types.DockingTask{
		Receptor:     receptor,
		Ligand:       ligand,
		ReceptorPath: filepath.Join(cfg.OutputDir, ReceptorsDir, Slug(receptor)+StructExt),
		LigandPath:   filepath.Join(cfg.OutputDir, LigandsDir, Slug(ligand)+StructExt),
		ConfigPath:   filepath.Join(cfg.OutputDir, "command_"+s+".txt"),
		OutputPath:   filepath.Join(cfg.OutputDir, DockingDir, "dock_"+s+StructExt),
	}
}

// CheckCollisions verifies that no two pairs in the batch resolve to the
// same config or output path. Slugging makes names safe but not injective,
// so a collision must abort the batch before any artifact is written:
// colliding tasks would silently corrupt each other's files.
func CheckCollisions(pairs []types.Pair, cfg types.RunConfig) error {
	seen := make(map[string]types.Pair, len(pairs))
	for _, p := range pairs {
		t := Plan(p.Receptor, p.Ligand, cfg)
		if prev, ok := seen[t.ConfigPath]; ok {
			return fmt.Errorf("artifact name collision: pairs %s/%s and %s/%s both map to %s",
				prev.Receptor, prev.Ligand, p.Receptor, p.Ligand, t.ConfigPath)
		}
		seen[t.ConfigPath] = p
	}
	return nil
}

// Build resolves a task's paths and writes its configuration artifact.
// Rebuilding the same pair overwrites the prior artifact with identical
// content. A write failure is an environment problem and aborts the batch.
func Build(receptor, ligand string, cfg types.RunConfig) (types.DockingTask, error) {
	t := Plan(receptor, ligand, cfg)

	for _, dir := range []string{cfg.OutputDir, filepath.Join(cfg.OutputDir, DockingDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return types.DockingTask{}, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(t.ConfigPath, []byte(renderConfig(t, cfg)), 0o644); err != nil {
		return types.DockingTask{}, fmt.Errorf("writing config for %s/%s: %w", receptor, ligand, err)
	}
	return t, nil
}

// renderConfig formats the tool configuration artifact: `key = value`
// lines in the fixed order the tool documents. The seed is deliberately
// absent; it travels on the command line via --seed.
func renderConfig(t types.DockingTask, cfg types.RunConfig) string {
	var b strings.Builder
	writeKV := func(key, value string) {
		b.WriteString(key)
		b.WriteString(" = ")
		b.WriteString(value)
		b.WriteByte('\n')
	}

	writeKV("receptor", t.ReceptorPath)
	writeKV("ligand", t.LigandPath)
	writeKV("center_x", formatNum(cfg.CenterX))
	writeKV("center_y", formatNum(cfg.CenterY))
	writeKV("center_z", formatNum(cfg.CenterZ))
	writeKV("size_x", formatNum(cfg.SizeX))
	writeKV("size_y", formatNum(cfg.SizeY))
	writeKV("size_z", formatNum(cfg.SizeZ))
	writeKV("energy_range", strconv.Itoa(cfg.EnergyRange))
	writeKV("exhaustiveness", strconv.Itoa(cfg.Exhaustiveness))

	return strings.TrimSpace(b.String()) + "\n"
}

// formatNum renders a float at full precision: 10.819 stays 10.819 and
// whole numbers render without a decimal point.
func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
