// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "dock-engine/0.1"). A contact email from .secrets/ is appended
	// when available, per NCBI usage guidelines.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RunConfig holds the immutable, batch-wide docking parameters. It is
// constructed once at batch start and passed down by value; nothing reads
// docking parameters from ambient state.
type RunConfig struct {
	// CenterX, CenterY, CenterZ are the search-box center coordinates.
	CenterX float64 `json:"center_x" yaml:"center_x"`
	CenterY float64 `json:"center_y" yaml:"center_y"`
	CenterZ float64 `json:"center_z" yaml:"center_z"`

	// SizeX, SizeY, SizeZ are the search-box dimensions in Angstroms.
	SizeX float64 `json:"size_x" yaml:"size_x"`
	SizeY float64 `json:"size_y" yaml:"size_y"`
	SizeZ float64 `json:"size_z" yaml:"size_z"`

	// EnergyRange is the maximum energy difference between the best and
	// worst reported pose (kcal/mol).
	EnergyRange int `json:"energy_range" yaml:"energy_range"`

	// Exhaustiveness controls the search sampling effort.
	Exhaustiveness int `json:"exhaustiveness" yaml:"exhaustiveness"`

	// Seed is the optional random seed passed to the tool via --seed.
	// Nil means the tool picks its own seed.
	Seed *int `json:"seed,omitempty" yaml:"seed,omitempty"`

	// VinaPath is the path to the external docking binary.
	VinaPath string `json:"vina_path" yaml:"vina_path"`

	// OutputDir is the root directory for all batch artifacts
	// (receptors/, ligands/, docking/, index/ and the per-task config files).
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Workers is the number of parallel docking workers.
	// Zero or negative means one worker per logical CPU.
	Workers int `json:"workers" yaml:"workers"`

	// TaskTimeout bounds a single external invocation. Zero disables the
	// timeout, in which case a hung tool blocks its worker slot.
	TaskTimeout time.Duration `json:"task_timeout" yaml:"task_timeout"`
}

// Seeded reports whether the batch runs with a fixed random seed.
func (c RunConfig) Seeded() bool {
	return c.Seed != nil
}

// FetchConfig holds settings for the source-structure download stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDelay is the delay between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// OutputDir is the batch root directory (contains receptors/, ligands/, metadata/).
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// StoreConfig holds settings for the pose index.
type StoreConfig struct {
	// OutputDir is the batch root directory (contains index/).
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Run   RunConfig   `json:"run" yaml:"run"`
	Fetch FetchConfig `json:"fetch" yaml:"fetch"`
	Store StoreConfig `json:"store" yaml:"store"`
}
