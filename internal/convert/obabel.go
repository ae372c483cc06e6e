// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const binObabel = "obabel"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %s", err, msg)
		}
		return err
	}
	return nil
}

// ObabelConverter converts structures by invoking the Open Babel CLI.
type ObabelConverter struct {
	exec executor
}

// NewObabelConverter verifies obabel is on PATH and returns a converter
// backed by it.
func NewObabelConverter() (*ObabelConverter, error) {
	return newObabelConverter(osExecutor{})
}

func newObabelConverter(e executor) (*ObabelConverter, error) {
	if _, err := e.LookPath(binObabel); err != nil {
		return nil, fmt.Errorf("%s not found on PATH: %w", binObabel, err)
	}
	return &ObabelConverter{exec: e}, nil
}

// ConvertLigand converts an SDF ligand to PDBQT, adding hydrogens and
// Gasteiger partial charges.
func (c *ObabelConverter) ConvertLigand(ctx context.Context, srcPath, destPath string) error {
	args := []string{srcPath, "-O", destPath, "-h", "--partialcharge", "gasteiger"}
	if err := c.exec.Run(ctx, binObabel, args...); err != nil {
		return fmt.Errorf("converting ligand %s: %w", srcPath, err)
	}
	return nil
}

// ConvertReceptor converts a PDB receptor to a rigid PDBQT (-xr), adding
// hydrogens and stripping waters.
func (c *ObabelConverter) ConvertReceptor(ctx context.Context, srcPath, destPath string) error {
	args := []string{srcPath, "-xr", "-O", destPath, "-h"}
	if err := c.exec.Run(ctx, binObabel, args...); err != nil {
		return fmt.Errorf("converting receptor %s: %w", srcPath, err)
	}
	return nil
}
