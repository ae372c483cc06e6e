// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vina launches the external docking binary and normalizes its
// outcome. The binary is treated as fully opaque: the package knows its
// flag surface (--config, --out, --seed) and nothing about its internals.
package vina

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pdiddy/dock-engine/pkg/types"
)

// executor abstracts command execution for testing.
type executor interface {
	Run(ctx context.Context, name string, args []string) types.InvokeResult
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) Run(ctx context.Context, name string, args []string) types.InvokeResult {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := types.InvokeResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		res.Succeeded = true
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	} else {
		// Launch failure: the process never ran.
		res.ExitCode = -1
	}
	if res.Stderr == "" {
		res.Stderr = err.Error()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		res.Stderr = strings.TrimSpace(ctxErr.Error() + "\n" + res.Stderr)
	}
	return res
}

// Invoker runs the docking binary for one task at a time, blocking until
// the process exits.
type Invoker struct {
	exec executor
}

// NewInvoker returns an Invoker backed by os/exec.
func NewInvoker() *Invoker {
	return &Invoker{exec: osExecutor{}}
}

// Invoke runs the tool for one task and returns its outcome. Failures of
// any kind (non-zero exit, missing binary, timeout) are folded into a
// failure-marked raw text and never escape as errors; a failed invocation
// is a per-task condition, not a batch condition.
func (iv *Invoker) Invoke(ctx context.Context, t types.DockingTask, cfg types.RunConfig) types.TaskOutcome {
	if cfg.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.TaskTimeout)
		defer cancel()
	}

	args := []string{"--config", t.ConfigPath, "--out", t.OutputPath}
	if cfg.Seeded() {
		args = append(args, "--seed", strconv.Itoa(*cfg.Seed))
	}

	res := iv.exec.Run(ctx, cfg.VinaPath, args)
	return types.TaskOutcome{
		Receptor:   t.Receptor,
		Ligand:     t.Ligand,
		ConfigPath: t.ConfigPath,
		OutputPath: t.OutputPath,
		Raw:        res.Text(),
	}
}

// CheckBinary verifies the configured binary exists on disk or on PATH
// before any task dispatches. A missing binary would otherwise fail every
// task individually with the same cause.
func CheckBinary(path string) error {
	if _, err := exec.LookPath(path); err != nil {
		return fmt.Errorf("docking binary %s not found: %w", path, err)
	}
	return nil
}
