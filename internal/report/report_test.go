// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dock-engine/pkg/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadPairs(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []types.Pair
		wantErr string
	}{
		{
			name:    "standard table",
			content: "receptor,ligand\nP00533,aspirin\nP04637,2244\n",
			want: []types.Pair{
				{Receptor: "P00533", Ligand: "aspirin"},
				{Receptor: "P04637", Ligand: "2244"},
			},
		},
		{
			name:    "reversed columns with extras",
			content: "ligand,notes,receptor\naspirin,best guess,P00533\n",
			want:    []types.Pair{{Receptor: "P00533", Ligand: "aspirin"}},
		},
		{
			name:    "values are trimmed",
			content: "receptor,ligand\n  P00533 ,  aspirin \n",
			want:    []types.Pair{{Receptor: "P00533", Ligand: "aspirin"}},
		},
		{
			name:    "missing ligand column",
			content: "receptor,compound\nP00533,aspirin\n",
			wantErr: "must contain receptor and ligand",
		},
		{
			name:    "empty identifier",
			content: "receptor,ligand\nP00533,\n",
			wantErr: "empty identifier",
		},
		{
			name:    "empty file",
			content: "",
			wantErr: "is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "pairs.csv", tt.content)
			got, err := ReadPairs(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteRawRoundTrip(t *testing.T) {
	outcomes := []types.TaskOutcome{
		{
			Receptor:   "P00533",
			Ligand:     "aspirin",
			ConfigPath: "out/command_aspirin_P00533.txt",
			OutputPath: "out/docking/dock_aspirin_P00533.pdbqt",
			Raw:        "line one\nline two, with a comma\n1  -5.1  0.0  0.0\n",
		},
		{
			Receptor: "P04637",
			Ligand:   "2244",
			Raw:      types.FailedPrefix + "exit status 1",
		},
	}

	path := filepath.Join(t.TempDir(), "docking_results.csv")
	require.NoError(t, WriteRaw(outcomes, path))

	got, err := ReadRaw(path)
	require.NoError(t, err)
	assert.Equal(t, outcomes, got)
}

func TestWriteRawOneRowPerPair(t *testing.T) {
	outcomes := []types.TaskOutcome{
		{Receptor: "a", Ligand: "x", Raw: "1  -5.0  0.0  0.0"},
		{Receptor: "b", Ligand: "y", Raw: types.FailedPrefix + "boom"},
		{Receptor: "c", Ligand: "z", Raw: "garbage with no poses"},
	}

	path := filepath.Join(t.TempDir(), "docking_results.csv")
	require.NoError(t, WriteRaw(outcomes, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	// Header plus exactly one row per outcome, failures included.
	require.Len(t, rows, 4)
	assert.Equal(t, rawHeader, rows[0])
}

func TestBuildPosesCountsMatchExtraction(t *testing.T) {
	outcomes := []types.TaskOutcome{
		{Receptor: "a", Ligand: "x", Raw: "1  -5.0  0.0  0.0\n2  -4.0  1.0  2.0"},
		{Receptor: "b", Ligand: "y", Raw: types.FailedPrefix + "boom"},
		{Receptor: "c", Ligand: "z", Raw: "1  -3.0  0.0  0.0"},
	}

	poses, err := BuildPoses(outcomes)
	require.NoError(t, err)
	require.Len(t, poses, 3)

	// Raw-row order, then pose ordinal order.
	assert.Equal(t, "x", poses[0].Ligand)
	assert.Equal(t, 1, poses[0].Pose)
	assert.Equal(t, "x", poses[1].Ligand)
	assert.Equal(t, 2, poses[1].Pose)
	assert.Equal(t, "z", poses[2].Ligand)
}

func TestBuildPosesSurfacesDefectsWithoutHidingRows(t *testing.T) {
	outcomes := []types.TaskOutcome{
		// Affinity overflows float64: a matched-but-unparsable field.
		{Receptor: "a", Ligand: "x", Raw: "1  -" + nines(400) + ".0  0.0  0.0"},
		{Receptor: "b", Ligand: "y", Raw: "1  -5.0  0.0  0.0"},
	}

	poses, err := BuildPoses(outcomes)
	require.Error(t, err)
	// The healthy row still contributed its pose.
	require.Len(t, poses, 1)
	assert.Equal(t, "y", poses[0].Ligand)
}

func nines(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '9'
	}
	return string(b)
}

func TestWritePoses(t *testing.T) {
	meta := &types.RunMetadata{
		GridX: 10.819, GridY: 2.607, GridZ: -53.797,
		SizeX: 60, SizeY: 60, SizeZ: 60,
		GridSpace: 0.375, Exhaustiveness: 8, Seed: -7,
	}
	records := []types.PoseRecord{
		{Receptor: "a", Ligand: "x", Pose: 1, Affinity: -7.452, RMSDLower: 0, RMSDUpper: 0, Metadata: meta},
		{Receptor: "b", Ligand: "y", Pose: 1, Affinity: -5.1, RMSDLower: 1.2, RMSDUpper: 2.3},
	}

	path := filepath.Join(t.TempDir(), "docking_poses.csv")
	require.NoError(t, WritePoses(records, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, poseHeader, rows[0])
	assert.Equal(t, []string{
		"a", "x", "1", "-7.452", "0", "0",
		"10.819", "2.607", "-53.797", "60", "60", "60", "0.375", "8", "-7",
	}, rows[1])
	assert.Equal(t, []string{
		"b", "y", "1", "-5.1", "1.2", "2.3",
		"", "", "", "", "", "", "", "", "",
	}, rows[2])
}
