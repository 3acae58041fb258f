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


package ai

import (
	"errors"
	"strings"
	"time"
)

// DefaultBaseURL is the OpenRouter chat-completions endpoint base.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// DefaultTimeout is the coarse aggregate timeout applied to the HTTP
// client shared by a whole batch; individual calls are not timed out
// separately.
const DefaultTimeout = 5 * time.Minute

// Config holds configuration for the extraction service client.
type Config struct {
	// BaseURL is the base URL of the OpenAI-compatible API.
	// Example: "https://openrouter.ai/api/v1"
	BaseURL string

	// Model is the model identifier sent with each request.
	// Example: "anthropic/claude-sonnet-4.5"
	Model string

	// APIKey authenticates requests. Required for real runs; dry runs
	// never construct a client.
	APIKey string

	// Timeout bounds the whole batch's HTTP client.
	Timeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithModel sets the model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithTimeout sets the aggregate HTTP client timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// DefaultConfig returns a Config with OpenRouter defaults. The API key
// must still be supplied.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Model:   "anthropic/claude-sonnet-4.5",
		Timeout: DefaultTimeout,
	}
}

// NewConfig creates a Config with default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in canonical form: the base URL
// carries no trailing slash and the timeout has a usable value.
func (c *Config) Normalize() {
	c.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	if c.BaseURL == "" {
		return errors.New("ai config: BaseURL is required")
	}
	if c.Model == "" {
		return errors.New("ai config: Model is required")
	}
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
