package ai

import "errors"

var (
	// ErrMissingAPIKey indicates no API key was configured for a real run.
	ErrMissingAPIKey = errors.New("ai config: APIKey is required")

	// ErrEmptyReply indicates the extraction service returned no usable
	// message content.
	ErrEmptyReply = errors.New("extraction service returned an empty reply")

	// ErrUnparsableReply indicates the reply's message content held no
	// parsable JSON object.
	ErrUnparsableReply = errors.New("extraction service returned non-JSON output")
)
