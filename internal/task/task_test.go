// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package task

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dock-engine/pkg/types"
)

func testRunConfig(outputDir string) types.RunConfig {
	return types.RunConfig{
		CenterX:        10.819,
		CenterY:        2.607,
		CenterZ:        -53.797,
		SizeX:          60,
		SizeY:          60,
		SizeZ:          60,
		EnergyRange:    4,
		Exhaustiveness: 8,
		VinaPath:       "vina",
		OutputDir:      outputDir,
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"aspirin", "aspirin"},
		{"P00533", "P00533"},
		{"2244", "2244"},
		{"1,3-butadiene", "1-3-butadiene"},
		{"../../etc/passwd", "..-..-etc-passwd"},
		{"name with spaces", "name-with-spaces"},
		{"unicodeé", "unicode-"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in), "Slug(%q)", tt.in)
	}
}

func TestPlanResolvesPaths(t *testing.T) {
	cfg := testRunConfig("out")
	got := Plan("P00533", "aspirin", cfg)

	assert.Equal(t, "P00533", got.Receptor)
	assert.Equal(t, "aspirin", got.Ligand)
	assert.Equal(t, filepath.Join("out", "receptors", "P00533.pdbqt"), got.ReceptorPath)
	assert.Equal(t, filepath.Join("out", "ligands", "aspirin.pdbqt"), got.LigandPath)
	assert.Equal(t, filepath.Join("out", "command_aspirin_P00533.txt"), got.ConfigPath)
	assert.Equal(t, filepath.Join("out", "docking", "dock_aspirin_P00533.pdbqt"), got.OutputPath)
}

func TestPlanPathUniqueness(t *testing.T) {
	cfg := testRunConfig("out")
	a := Plan("recA", "lig1", cfg)
	b := Plan("recB", "lig1", cfg)
	c := Plan("recA", "lig2", cfg)

	assert.NotEqual(t, a.ConfigPath, b.ConfigPath)
	assert.NotEqual(t, a.ConfigPath, c.ConfigPath)
	assert.NotEqual(t, a.OutputPath, b.OutputPath)
	assert.NotEqual(t, a.OutputPath, c.OutputPath)
}

func TestCheckCollisions(t *testing.T) {
	cfg := testRunConfig("out")

	t.Run("distinct pairs pass", func(t *testing.T) {
		pairs := []types.Pair{
			{Receptor: "recA", Ligand: "lig1"},
			{Receptor: "recB", Ligand: "lig1"},
			{Receptor: "recA", Ligand: "lig2"},
		}
		require.NoError(t, CheckCollisions(pairs, cfg))
	})

	t.Run("slug collision rejected", func(t *testing.T) {
		// Both ligands slug to "lig-1", so their artifacts would overwrite
		// each other.
		pairs := []types.Pair{
			{Receptor: "recA", Ligand: "lig/1"},
			{Receptor: "recA", Ligand: "lig,1"},
		}
		err := CheckCollisions(pairs, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "collision")
	})
}

func TestBuildWritesConfigArtifact(t *testing.T) {
	dir := t.TempDir()
	cfg := testRunConfig(dir)

	built, err := Build("P00533", "aspirin", cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(built.ConfigPath)
	require.NoError(t, err)

	want := "receptor = " + built.ReceptorPath + "\n" +
		"ligand = " + built.LigandPath + "\n" +
		"center_x = 10.819\n" +
		"center_y = 2.607\n" +
		"center_z = -53.797\n" +
		"size_x = 60\n" +
		"size_y = 60\n" +
		"size_z = 60\n" +
		"energy_range = 4\n" +
		"exhaustiveness = 8\n"
	assert.Equal(t, want, string(data))
}

func TestBuildSeedNeverInConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := testRunConfig(dir)
	seed := 42
	cfg.Seed = &seed

	built, err := Build("rec", "lig", cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(built.ConfigPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "seed")
}

func TestBuildIdempotent(t *testing.T) {
	dir := t.TempDir()
	cfg := testRunConfig(dir)

	first, err := Build("rec", "lig", cfg)
	require.NoError(t, err)
	firstData, err := os.ReadFile(first.ConfigPath)
	require.NoError(t, err)

	second, err := Build("rec", "lig", cfg)
	require.NoError(t, err)
	secondData, err := os.ReadFile(second.ConfigPath)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstData, secondData)
}

func TestBuildFailsOnUnwritableRoot(t *testing.T) {
	dir := t.TempDir()
	// A plain file where the output root should be makes MkdirAll fail.
	blocker := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	cfg := testRunConfig(blocker)
	_, err := Build("rec", "lig", cfg)
	require.Error(t, err)
}
