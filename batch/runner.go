// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/handoff/core"
)

// Concurrency limits accepted by the runner.
const (
	MinConcurrency     = 1
	MaxConcurrency     = 20
	DefaultConcurrency = 4
)

// Summary aggregates unit outcomes across one batch.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
}

// Total returns the number of units accounted for.
func (s Summary) Total() int {
	return s.Processed + s.Skipped + s.Failed
}

// Runner dispatches unit pipelines under a bounded worker pool. The
// pool size bounds how many extraction calls can be in flight at once.
type Runner struct {
	pipeline *Pipeline
	pool     *ants.Pool
	out      io.Writer
	mu       sync.Mutex // serializes progress lines from concurrent units
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner) error

// WithConcurrency sets the worker pool size. Valid range is 1-20;
// default is 4.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) error {
		if n < MinConcurrency || n > MaxConcurrency {
			return fmt.Errorf("%w: got %d", ErrConcurrencyOutOfRange, n)
		}

		if r.pool != nil {
			r.pool.Release()
		}
		pool, err := ants.NewPool(n)
		if err != nil {
			return err
		}
		r.pool = pool
		return nil
	}
}

// WithOutput sets the writer for per-unit progress lines.
// Default is os.Stderr.
func WithOutput(out io.Writer) RunnerOption {
	return func(r *Runner) error {
		if out != nil {
			r.out = out
		}
		return nil
	}
}

// NewRunner creates a runner around one shared pipeline.
func NewRunner(pipeline *Pipeline, opts ...RunnerOption) (*Runner, error) {
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}

	pool, err := ants.NewPool(DefaultConcurrency)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		pipeline: pipeline,
		pool:     pool,
		out:      os.Stderr,
	}
	for _, opt := range opts {
		if optErr := opt(r); optErr != nil {
			r.Release()
			return nil, optErr
		}
	}
	return r, nil
}

// Run processes every unit and returns the aggregate counts. Dispatch
// follows the given order; completion order is unconstrained because
// index commits are serialized and last-writer-wins per id.
func (r *Runner) Run(ctx context.Context, units []core.Unit) Summary {
	var (
		wg      sync.WaitGroup
		tallyMu sync.Mutex
		summary Summary
	)

	tally := func(outcome Outcome) {
		tallyMu.Lock()
		defer tallyMu.Unlock()
		switch outcome.Status {
		case Processed:
			summary.Processed++
		case Skipped:
			summary.Skipped++
		case Failed:
			summary.Failed++
		}
	}

	total := len(units)
	for i, unit := range units {
		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			r.printf("[%d/%d] %s <- %s\n", i+1, total, unit.ID, unit.Path)
			outcome := r.pipeline.Run(ctx, unit)
			r.report(outcome)
			tally(outcome)
		})
		if err != nil {
			wg.Done()
			r.printf("[%d/%d] %s dispatch failed: %v\n", i+1, total, unit.ID, err)
			tally(Outcome{Unit: unit, Status: Failed, Err: err})
		}
	}
	wg.Wait()

	r.printf("done: %d processed, %d skipped, %d failed\n",
		summary.Processed, summary.Skipped, summary.Failed)
	return summary
}

// Release releases the worker pool. The runner should not be used
// after calling Release.
func (r *Runner) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

func (r *Runner) report(outcome Outcome) {
	switch outcome.Status {
	case Processed:
		r.printf("  OK %s: %s\n", outcome.Unit.ID, outcome.Headline)
	case Skipped:
		r.printf("  SKIP %s: %v\n", outcome.Unit.ID, outcome.Err)
	case Failed:
		r.printf("  FAILED %s (%s): %v\n", outcome.Unit.ID, outcome.Stage, outcome.Err)
	}
}

func (r *Runner) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}
