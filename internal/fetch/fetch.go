// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads ligand and receptor source structures from
// public databases: ligands as 3-D SDF records from PubChem, receptors as
// AlphaFold model PDBs keyed by UniProt accession. It fills the batch
// layout the preparation and docking stages consume.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/dock-engine/internal/httputil"
	"github.com/pdiddy/dock-engine/internal/task"
	"github.com/pdiddy/dock-engine/pkg/types"
)

const metadataDir = "metadata"

// EntityKind distinguishes the two download targets.
type EntityKind string

const (
	KindLigand   EntityKind = "ligand"
	KindReceptor EntityKind = "receptor"
)

// Entity records the provenance of one downloaded structure, written as a
// YAML sidecar next to the batch artifacts.
type Entity struct {
	// ID is the raw identifier from the input table.
	ID string `json:"id" yaml:"id"`

	// Kind is ligand or receptor.
	Kind EntityKind `json:"kind" yaml:"kind"`

	// SourceURL is the URL the structure was downloaded from.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// Path is the local file the structure was saved to.
	Path string `json:"path" yaml:"path"`

	// FetchedAt is the download timestamp.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Total returns the total number of structures processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any download failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FetchEntity downloads one structure if it is not already on disk and
// writes its provenance sidecar. The skipped return value indicates
// whether the file already existed.
func FetchEntity(ctx context.Context, client *http.Client, id string, kind EntityKind, cfg types.FetchConfig, w io.Writer) (skipped bool, err error) {
	slug := task.Slug(id)

	var destPath, srcURL string
	switch kind {
	case KindLigand:
		destPath = filepath.Join(cfg.OutputDir, task.LigandsDir, slug+".sdf")
		srcURL = LigandURL(id)
	case KindReceptor:
		destPath = filepath.Join(cfg.OutputDir, task.ReceptorsDir, slug+".pdb")
		srcURL = ReceptorURL(id)
	default:
		return false, fmt.Errorf("unknown entity kind %q", kind)
	}

	if _, statErr := os.Stat(destPath); statErr == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", slug)
		return true, nil
	}

	for _, dir := range []string{filepath.Dir(destPath), filepath.Join(cfg.OutputDir, metadataDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	fmt.Fprintf(w, "downloading: %s (%s)\n", slug, kind)

	if err := downloadFile(ctx, client, srcURL, destPath, cfg); err != nil {
		return false, fmt.Errorf("downloading %s: %w", slug, err)
	}

	entity := Entity{
		ID:        id,
		Kind:      kind,
		SourceURL: srcURL,
		Path:      destPath,
		FetchedAt: time.Now().UTC(),
	}
	// The kind prefix keeps a ligand and a receptor with the same slug
	// from overwriting each other's provenance record.
	metaPath := filepath.Join(cfg.OutputDir, metadataDir, string(kind)+"-"+slug+".yaml")
	if err := writeSidecar(entity, metaPath); err != nil {
		return false, fmt.Errorf("writing metadata for %s: %w", slug, err)
	}
	return false, nil
}

// FetchBatch downloads every distinct ligand and receptor referenced by
// the pairs, printing per-item status and returning a summary. Individual
// failures are contained; an identifier appearing in several pairs is
// fetched once. A delay applies between consecutive network downloads.
func FetchBatch(ctx context.Context, client *http.Client, pairs []types.Pair, cfg types.FetchConfig, w io.Writer) BatchResult {
	type target struct {
		id   string
		kind EntityKind
	}

	var targets []target
	seen := make(map[target]bool)
	for _, p := range pairs {
		for _, t := range []target{{p.Ligand, KindLigand}, {p.Receptor, KindReceptor}} {
			if !seen[t] {
				seen[t] = true
				targets = append(targets, t)
			}
		}
	}

	var result BatchResult
	downloaded := 0
	for _, t := range targets {
		if downloaded > 0 && cfg.DownloadDelay > 0 {
			time.Sleep(cfg.DownloadDelay)
		}
		wasSkipped, err := FetchEntity(ctx, client, t.id, t.kind, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", t.id, err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Downloaded++
			downloaded++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// downloadFile fetches url to destPath using a temporary file so partial
// downloads never masquerade as complete structures.
func downloadFile(ctx context.Context, client *http.Client, url, destPath string, cfg types.FetchConfig) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func writeSidecar(entity Entity, path string) error {
	data, err := yaml.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
