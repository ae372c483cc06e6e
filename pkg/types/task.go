// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Pair is one receptor/ligand row from the input table.
type Pair struct {
	// Receptor is the receptor identifier (e.g. a UniProt accession).
	Receptor string `json:"receptor" yaml:"receptor"`

	// Ligand is the ligand identifier (a PubChem CID or compound name).
	Ligand string `json:"ligand" yaml:"ligand"`
}

// DockingTask is one fully-specified docking job. It is immutable once
// built and owned exclusively by the worker that processes it.
type DockingTask struct {
	// Receptor and Ligand are the identifiers from the input pair.
	Receptor string `json:"receptor" yaml:"receptor"`
	Ligand   string `json:"ligand" yaml:"ligand"`

	// ReceptorPath and LigandPath are the resolved PDBQT file paths.
	ReceptorPath string `json:"receptor_path" yaml:"receptor_path"`
	LigandPath   string `json:"ligand_path" yaml:"ligand_path"`

	// ConfigPath is the per-task configuration artifact written by the builder.
	ConfigPath string `json:"config_path" yaml:"config_path"`

	// OutputPath is where the tool writes the docked poses.
	OutputPath string `json:"output_path" yaml:"output_path"`
}

// FailedPrefix marks the raw text of a task whose external invocation did
// not succeed. The extractor never matches pose lines inside such text, so
// a failed task naturally yields zero poses.
const FailedPrefix = "Failed: "

// InvokeResult is the normalized outcome of one external tool invocation.
type InvokeResult struct {
	// Succeeded is true when the process exited with status zero.
	Succeeded bool `json:"succeeded"`

	// Stdout and Stderr are the captured process streams. For launch
	// errors Stderr carries the launch error message instead.
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`

	// ExitCode is the process exit status; -1 when the process never ran.
	ExitCode int `json:"exit_code"`
}

// Text flattens the result into the uniform raw-text shape consumed by the
// extractor: the captured stdout on success, or FailedPrefix followed by
// the error detail on failure.
func (r InvokeResult) Text() string {
	if r.Succeeded {
		return r.Stdout
	}
	return FailedPrefix + r.Stderr
}

// TaskOutcome is the raw record of one completed task, exactly one per
// DockingTask regardless of success.
type TaskOutcome struct {
	Receptor   string `json:"receptor" yaml:"receptor"`
	Ligand     string `json:"ligand" yaml:"ligand"`
	ConfigPath string `json:"config_path" yaml:"config_path"`
	OutputPath string `json:"output_path" yaml:"output_path"`

	// Raw is the tool's standard output, or a FailedPrefix-marked message.
	Raw string `json:"raw" yaml:"raw"`
}

// Failed reports whether the outcome carries a failure-marked raw text.
func (o TaskOutcome) Failed() bool {
	return len(o.Raw) >= len(FailedPrefix) && o.Raw[:len(FailedPrefix)] == FailedPrefix
}

// RunMetadata is the optional per-run block the tool reports alongside its
// pose table. It is all-or-nothing: a pose either carries the complete
// block or none of it.
type RunMetadata struct {
	// GridX, GridY, GridZ are the search-box center actually used.
	GridX float64 `json:"grid_x" yaml:"grid_x"`
	GridY float64 `json:"grid_y" yaml:"grid_y"`
	GridZ float64 `json:"grid_z" yaml:"grid_z"`

	// SizeX, SizeY, SizeZ are the search-box dimensions actually used.
	SizeX float64 `json:"size_x" yaml:"size_x"`
	SizeY float64 `json:"size_y" yaml:"size_y"`
	SizeZ float64 `json:"size_z" yaml:"size_z"`

	// GridSpace is the grid point spacing.
	GridSpace float64 `json:"grid_space" yaml:"grid_space"`

	// Exhaustiveness is the sampling effort actually used.
	Exhaustiveness int `json:"exhaustiveness" yaml:"exhaustiveness"`

	// Seed is the random seed actually used, as reported by the tool.
	Seed int `json:"seed" yaml:"seed"`
}

// PoseRecord is one scored binding pose extracted from a task's raw text.
type PoseRecord struct {
	Receptor string `json:"receptor" yaml:"receptor"`
	Ligand   string `json:"ligand" yaml:"ligand"`

	// Pose is the 1-based rank within the task, unique and increasing in
	// output order. Pose 1 is the best-ranked pose when the tool emits a
	// rank-sorted table.
	Pose int `json:"pose" yaml:"pose"`

	// Affinity is the predicted binding free energy (kcal/mol).
	Affinity float64 `json:"affinity" yaml:"affinity"`

	// RMSDLower and RMSDUpper bracket the deviation from the best pose.
	RMSDLower float64 `json:"rmsd_lower" yaml:"rmsd_lower"`
	RMSDUpper float64 `json:"rmsd_upper" yaml:"rmsd_upper"`

	// Metadata is the run block shared by all poses of the task, or nil
	// when the tool did not report one.
	Metadata *RunMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}
