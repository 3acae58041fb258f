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
	"log/slog"

	"github.com/poiesic/handoff/ai"
	"github.com/poiesic/handoff/core"
	"github.com/poiesic/handoff/handoff"
	"github.com/poiesic/handoff/index"
	"github.com/poiesic/handoff/session"
)

// Sessions below either threshold carry too little signal to be worth
// an extraction call.
const (
	minTurns = 3
	minChars = 400
)

// Status is the terminal state of one unit's pipeline run.
type Status int

const (
	// Processed means the unit completed, or would have in a dry run.
	Processed Status = iota
	// Skipped means the unit was filtered out before extraction.
	Skipped
	// Failed means some stage errored; the rest of the batch continues.
	Failed
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case Processed:
		return "processed"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Stage identifies which pipeline step produced a failure.
type Stage string

const (
	StageRead        Stage = "read"
	StageMetadata    Stage = "metadata"
	StageExtraction  Stage = "extraction"
	StageValidation  Stage = "validation"
	StagePersist     Stage = "persist"
	StageIndexCommit Stage = "index-commit"
)

// Outcome is the result of running one unit through the pipeline.
type Outcome struct {
	Unit     core.Unit
	Status   Status
	Stage    Stage // set when Status is Failed
	Err      error // skip reason or failure cause
	Headline string
}

// Pipeline runs one transcript from raw JSONL to committed index entry.
// A single Pipeline is shared by all workers in a batch; it holds no
// per-unit state.
type Pipeline struct {
	extractor   ai.HandoffExtractor
	store       *index.Store
	gate        *Gate
	handoffsDir string
	dryRun      bool
	logger      *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithGate sets the shared rate gate. Default is a disabled gate.
func WithGate(gate *Gate) PipelineOption {
	return func(p *Pipeline) {
		if gate != nil {
			p.gate = gate
		}
	}
}

// WithDryRun makes the pipeline stop before the extraction call and
// report what would have happened.
func WithDryRun(dryRun bool) PipelineOption {
	return func(p *Pipeline) {
		p.dryRun = dryRun
	}
}

// WithPipelineLogger sets a custom logger.
// Default is slog.Default().
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates a pipeline writing handoff files to handoffsDir
// and committing entries through store.
func NewPipeline(extractor ai.HandoffExtractor, store *index.Store, handoffsDir string, opts ...PipelineOption) (*Pipeline, error) {
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}

	p := &Pipeline{
		extractor:   extractor,
		store:       store,
		gate:        NewGate(0),
		handoffsDir: handoffsDir,
		logger:      slog.Default().With("component", "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run processes one unit to a terminal outcome. Errors are reported in
// the outcome, never propagated, so one unit cannot abort a batch.
func (p *Pipeline) Run(ctx context.Context, unit core.Unit) Outcome {
	sess, err := session.ParseFile(unit.Path)
	if err != nil {
		return p.failed(unit, StageRead, err)
	}

	turns, chars := sess.Stats()
	if turns < minTurns {
		return Outcome{Unit: unit, Status: Skipped, Err: fmt.Errorf("%w: %d turns", ErrTooShort, turns)}
	}
	if chars < minChars {
		return Outcome{Unit: unit, Status: Skipped, Err: fmt.Errorf("%w: %d chars", ErrTooTrivial, chars)}
	}

	date := sess.Date()
	if date == "" {
		return p.failed(unit, StageMetadata, ErrNoSessionDate)
	}

	if p.dryRun {
		return Outcome{
			Unit:     unit,
			Status:   Processed,
			Headline: fmt.Sprintf("would extract: %d turns, %d chars, %s", turns, chars, date),
		}
	}

	if err := p.gate.Wait(ctx); err != nil {
		return p.failed(unit, StageExtraction, err)
	}

	h, err := p.extractor.ExtractHandoff(ctx, sess.Markdown())
	if err != nil {
		return p.failed(unit, StageExtraction, err)
	}

	p.normalize(h, unit, sess, date)

	if err := core.ValidateHandoff(h); err != nil {
		return p.failed(unit, StageValidation, err)
	}

	path, err := handoff.Save(h, p.handoffsDir)
	if err != nil {
		return p.failed(unit, StagePersist, err)
	}

	// Commit what actually landed on disk, not the in-memory payload.
	persisted, err := handoff.ParseFile(path)
	if err != nil {
		return p.failed(unit, StageIndexCommit, err)
	}
	if err := p.store.Upsert(persisted.SessionID, index.DocumentFromHandoff(persisted)); err != nil {
		return p.failed(unit, StageIndexCommit, err)
	}

	return Outcome{Unit: unit, Status: Processed, Headline: h.Headline}
}

// normalize forces identity fields to the values derived from the
// transcript itself and backfills metadata the extraction service left
// out. The service is untrusted for identity.
func (p *Pipeline) normalize(h *core.Handoff, unit core.Unit, sess *session.Session, date string) {
	if h.SessionID != unit.ID {
		if h.SessionID != "" {
			p.logger.Warn("correcting session id in extraction reply",
				"unit", unit.ID, "got", h.SessionID)
		}
		h.SessionID = unit.ID
	}
	if h.Date != date {
		if h.Date != "" {
			p.logger.Warn("correcting date in extraction reply",
				"unit", unit.ID, "got", h.Date, "want", date)
		}
		h.Date = date
	}

	seconds := sess.DurationSeconds()
	if h.Duration == "" {
		h.Duration = session.FormatDuration(seconds)
	}
	if h.DurationMinutes == 0 {
		h.DurationMinutes = int(seconds / 60)
	}
	if h.Model == "" {
		h.Model = sess.Model()
	}
}

func (p *Pipeline) failed(unit core.Unit, stage Stage, err error) Outcome {
	p.logger.Error("unit failed", "unit", unit.ID, "stage", string(stage), "err", err)
	return Outcome{Unit: unit, Status: Failed, Stage: stage, Err: err}
}
