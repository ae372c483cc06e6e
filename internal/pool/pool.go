// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pool fans a batch of docking pairs out across parallel workers
// and collects exactly one outcome per pair.
package pool

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/dock-engine/internal/task"
	"github.com/pdiddy/dock-engine/pkg/types"
)

// Invoker runs the external tool for one built task. Satisfied by
// *vina.Invoker; tests substitute fakes.
type Invoker interface {
	Invoke(ctx context.Context, t types.DockingTask, cfg types.RunConfig) types.TaskOutcome
}

// BatchResult holds the outcome of a batch docking run.
type BatchResult struct {
	Succeeded int
	Failed    int

	// Outcomes has one entry per input pair, in submission order.
	Outcomes []types.TaskOutcome
}

// Total returns the total number of pairs processed.
func (r BatchResult) Total() int {
	return r.Succeeded + r.Failed
}

// HasFailures reports whether any task failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Run builds and docks every pair with at most cfg.Workers tasks in flight
// (one per logical CPU when unset). Per-item status goes to w.
//
// Each worker's filesystem footprint is disjoint by the builder's
// path-uniqueness guarantee, so the status writer is the only state
// workers share; a mutex serializes writes to it. A task whose external
// invocation fails contributes its failure-marked outcome and never
// disturbs siblings; a builder write failure is an environment problem
// and cancels the whole batch.
func Run(ctx context.Context, pairs []types.Pair, cfg types.RunConfig, inv Invoker, w io.Writer) (BatchResult, error) {
	if err := task.CheckCollisions(pairs, cfg); err != nil {
		return BatchResult{}, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	outcomes := make([]types.TaskOutcome, len(pairs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var wmu sync.Mutex
	for i, p := range pairs {
		i, p := i, p
		g.Go(func() error {
			t, err := task.Build(p.Receptor, p.Ligand, cfg)
			if err != nil {
				return err
			}
			outcomes[i] = inv.Invoke(ctx, t, cfg)

			wmu.Lock()
			defer wmu.Unlock()
			if outcomes[i].Failed() {
				fmt.Fprintf(w, "failed:  %s vs %s\n", p.Ligand, p.Receptor)
			} else {
				fmt.Fprintf(w, "docked:  %s vs %s\n", p.Ligand, p.Receptor)
			}
			return nil
		})
	}

	// Barrier: aggregation may only begin once every task has reported.
	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Failed() {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d docked, %d failed (total: %d)\n",
		result.Succeeded, result.Failed, result.Total())
	return result, nil
}
