package batch

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/handoff/core"
)

func TestRunnerAggregatesOutcomes(t *testing.T) {
	env := newPipelineEnv(t)
	units := []core.Unit{
		writeUnit(t, "aaaa1111.jsonl", 3, strings.Repeat("plenty of session text here ", 5), true),
		writeUnit(t, "bbbb2222.jsonl", 3, strings.Repeat("plenty of session text here ", 5), true),
		writeUnit(t, "cccc3333.jsonl", 2, "hi", true),
	}

	var out bytes.Buffer
	runner, err := NewRunner(env.pipeline, WithConcurrency(2), WithOutput(&out))
	require.NoError(t, err)
	defer runner.Release()

	summary := runner.Run(context.Background(), units)

	assert.Equal(t, Summary{Processed: 2, Skipped: 1, Failed: 0}, summary)
	assert.Equal(t, 3, summary.Total())
	assert.Equal(t, 2, env.extractor.CallCount())

	output := out.String()
	assert.Contains(t, output, "aaaa1111 <- ")
	assert.Contains(t, output, "  OK ")
	assert.Contains(t, output, "  SKIP cccc3333")
	assert.Contains(t, output, "done: 2 processed, 1 skipped, 0 failed")
}

func TestRunnerCountsFailures(t *testing.T) {
	env := newPipelineEnv(t)
	env.extractor.ExtractHandoffFunc = func(ctx context.Context, markdown string) (*core.Handoff, error) {
		return nil, assert.AnError
	}
	units := []core.Unit{
		writeUnit(t, "aaaa1111.jsonl", 3, strings.Repeat("plenty of session text here ", 5), true),
		writeUnit(t, "bbbb2222.jsonl", 3, strings.Repeat("plenty of session text here ", 5), true),
	}

	var out bytes.Buffer
	runner, err := NewRunner(env.pipeline, WithOutput(&out))
	require.NoError(t, err)
	defer runner.Release()

	summary := runner.Run(context.Background(), units)

	assert.Equal(t, Summary{Processed: 0, Skipped: 0, Failed: 2}, summary)
	assert.Contains(t, out.String(), "FAILED aaaa1111 (extraction)")
}

// With a pool of N and M>N units, at no point are more than N
// extraction calls in flight.
func TestRunnerBoundsConcurrency(t *testing.T) {
	const limit = 2

	env := newPipelineEnv(t)
	var inFlight, peak atomic.Int32
	env.extractor.ExtractHandoffFunc = func(ctx context.Context, markdown string) (*core.Handoff, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		return &core.Handoff{
			Headline:  "Concurrent unit",
			Substance: 3,
		}, nil
	}

	var units []core.Unit
	names := []string{"aaaa1111.jsonl", "bbbb2222.jsonl", "cccc3333.jsonl", "dddd4444.jsonl", "eeee5555.jsonl", "ffff6666.jsonl"}
	for _, name := range names {
		units = append(units, writeUnit(t, name, 3, strings.Repeat("plenty of session text here ", 5), true))
	}

	var out bytes.Buffer
	runner, err := NewRunner(env.pipeline, WithConcurrency(limit), WithOutput(&out))
	require.NoError(t, err)
	defer runner.Release()

	summary := runner.Run(context.Background(), units)

	assert.Equal(t, len(units), summary.Processed)
	assert.Equal(t, len(units), env.extractor.CallCount())
	assert.LessOrEqual(t, peak.Load(), int32(limit))
}

// With delay d, consecutive extraction calls start at least d apart
// even when every worker is ready.
func TestRunnerRateSpacing(t *testing.T) {
	const delay = 40 * time.Millisecond

	env := newPipelineEnv(t, WithGate(NewGate(delay)))

	var mu sync.Mutex
	var starts []time.Time
	env.extractor.ExtractHandoffFunc = func(ctx context.Context, markdown string) (*core.Handoff, error) {
		mu.Lock()
		starts = append(starts, time.Now())
		mu.Unlock()
		return &core.Handoff{Headline: "Spaced unit", Substance: 3}, nil
	}

	units := []core.Unit{
		writeUnit(t, "aaaa1111.jsonl", 3, strings.Repeat("plenty of session text here ", 5), true),
		writeUnit(t, "bbbb2222.jsonl", 3, strings.Repeat("plenty of session text here ", 5), true),
		writeUnit(t, "cccc3333.jsonl", 3, strings.Repeat("plenty of session text here ", 5), true),
	}

	var out bytes.Buffer
	runner, err := NewRunner(env.pipeline, WithConcurrency(3), WithOutput(&out))
	require.NoError(t, err)
	defer runner.Release()

	began := time.Now()
	summary := runner.Run(context.Background(), units)

	assert.Equal(t, 3, summary.Processed)
	require.Len(t, starts, 3)
	assert.GreaterOrEqual(t, time.Since(began), 2*delay)
}

func TestWithConcurrencyRange(t *testing.T) {
	env := newPipelineEnv(t)

	for _, n := range []int{0, -1, 21, 100} {
		_, err := NewRunner(env.pipeline, WithConcurrency(n))
		assert.ErrorIs(t, err, ErrConcurrencyOutOfRange, "concurrency %d", n)
	}

	for _, n := range []int{1, 20} {
		runner, err := NewRunner(env.pipeline, WithConcurrency(n))
		require.NoError(t, err, "concurrency %d", n)
		runner.Release()
	}
}

func TestNewRunnerRequiresPipeline(t *testing.T) {
	_, err := NewRunner(nil)
	assert.ErrorIs(t, err, ErrPipelineRequired)
}
