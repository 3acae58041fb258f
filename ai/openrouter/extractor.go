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


// Package openrouter implements ai.HandoffExtractor against the
// OpenRouter chat-completions API using an OpenAI-compatible client.
package openrouter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/handoff/ai"
	"github.com/poiesic/handoff/core"
)

// Extractor implements ai.HandoffExtractor using OpenRouter's
// OpenAI-compatible chat API.
type Extractor struct {
	client       llms.Model
	instructions string
	schema       string
	logger       *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithInstructions overrides the default system instructions.
func WithInstructions(instructions string) Option {
	return func(e *Extractor) {
		if instructions != "" {
			e.instructions = instructions
		}
	}
}

// WithSchema overrides the default extraction schema text embedded in
// each request.
func WithSchema(schema string) Option {
	return func(e *Extractor) {
		if schema != "" {
			e.schema = schema
		}
	}
}

// newExtractor is the internal constructor returning the concrete type.
func newExtractor(config *ai.Config, opts ...Option) (*Extractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.BaseURL),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.Model),
		openai.WithHTTPClient(&http.Client{Timeout: config.Timeout}),
	)
	if err != nil {
		return nil, err
	}

	e := &Extractor{
		client:       client,
		instructions: defaultInstructions,
		schema:       defaultSchema,
		logger:       slog.Default().With("component", "openrouter-extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NewExtractor creates a handoff extractor using the provided
// configuration.
//
// Returns ai.HandoffExtractor interface to enforce abstraction.
func NewExtractor(config *ai.Config, opts ...Option) (ai.HandoffExtractor, error) {
	return newExtractor(config, opts...)
}

// ExtractHandoff sends one transcript to the extraction service and
// parses the reply. Failures are returned as-is; the caller decides how
// to report them. There is no automatic retry.
func (e *Extractor) ExtractHandoff(ctx context.Context, transcriptMarkdown string) (*core.Handoff, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(e.instructions),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildUserMessage(e.schema, transcriptMarkdown)),
			},
		},
	}

	response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(response.Choices) < 1 {
		return nil, ai.ErrEmptyReply
	}

	payload, err := parseReply(response.Choices[0].Content)
	if err != nil {
		e.logger.Debug("unusable extraction reply",
			"bytes", len(response.Choices[0].Content),
			"err", err)
		return nil, err
	}

	return payload, nil
}
