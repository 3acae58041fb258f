package batch

import "errors"

var (
	// ErrExtractorRequired is returned when an extractor is not provided.
	ErrExtractorRequired = errors.New("extractor required")

	// ErrStoreRequired is returned when an index store is not provided.
	ErrStoreRequired = errors.New("index store required")

	// ErrPipelineRequired is returned when a runner is built without a pipeline.
	ErrPipelineRequired = errors.New("pipeline required")

	// ErrConcurrencyOutOfRange is returned for concurrency values outside 1-20.
	ErrConcurrencyOutOfRange = errors.New("concurrency must be between 1 and 20")

	// ErrTooShort marks a transcript skipped for having too few turns.
	ErrTooShort = errors.New("too short")

	// ErrTooTrivial marks a transcript skipped for having too little text.
	ErrTooTrivial = errors.New("too trivial")

	// ErrNoSessionDate is returned when a transcript carries no usable timestamp.
	ErrNoSessionDate = errors.New("no timestamp in transcript")
)
