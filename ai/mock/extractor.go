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


// Package mock provides test doubles for the ai package.
package mock

import (
	"context"
	"sync"

	"github.com/poiesic/handoff/core"
)

// MockExtractor implements ai.HandoffExtractor for testing.
// Set ExtractHandoffFunc to inject behavior; the default returns a
// minimal valid payload echoing nothing about the transcript.
//
// Note: returns a concrete type to allow call-count assertions.
type MockExtractor struct {
	ExtractHandoffFunc func(ctx context.Context, transcriptMarkdown string) (*core.Handoff, error)

	mu        sync.Mutex
	callCount int
}

// NewMockExtractor creates a mock extractor with default behavior.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

// ExtractHandoff records the call and delegates to ExtractHandoffFunc
// when set.
func (m *MockExtractor) ExtractHandoff(ctx context.Context, transcriptMarkdown string) (*core.Handoff, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.ExtractHandoffFunc != nil {
		return m.ExtractHandoffFunc(ctx, transcriptMarkdown)
	}

	return &core.Handoff{
		SessionID:    "mock0000",
		Date:         "2025-01-01",
		Headline:     "Mock handoff",
		Projects:     []string{"mock"},
		Keywords:     []string{"test"},
		Substance:    1,
		WhatHappened: "Mock extraction.",
	}, nil
}

// CallCount returns the number of times ExtractHandoff was called.
func (m *MockExtractor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and injected function.
func (m *MockExtractor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.ExtractHandoffFunc = nil
}
