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


// Package config resolves file locations and service settings from the
// environment. Every knob has a HANDOFF_-prefixed variable; paths
// default to the conventional ~/.claude layout.
package config

import (
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Environment variable names.
const (
	EnvSessionsDir      = "HANDOFF_SESSIONS_DIR"
	EnvOutputDir        = "HANDOFF_OUTPUT_DIR"
	EnvIndexPath        = "HANDOFF_INDEX_PATH"
	EnvTasksDir         = "HANDOFF_TASKS_DIR"
	EnvModel            = "HANDOFF_MODEL"
	EnvBaseURL          = "HANDOFF_BASE_URL"
	EnvAPIKey           = "OPENROUTER_API_KEY"
	EnvInstructionsFile = "HANDOFF_INSTRUCTIONS_FILE"
	EnvSchemaFile       = "HANDOFF_SCHEMA_FILE"
)

// Config holds the resolved settings for one invocation.
type Config struct {
	// SessionsDir is the root containing per-project transcript dirs.
	SessionsDir string

	// HandoffsDir receives rendered handoff documents.
	HandoffsDir string

	// IndexPath locates the JSON index snapshot.
	IndexPath string

	// TasksDir is used by fd-based active-session detection.
	TasksDir string

	Model   string
	BaseURL string
	APIKey  string

	// Optional overrides for the default extraction prompt assets.
	InstructionsFile string
	SchemaFile       string
}

// FromEnv builds a Config from the environment, filling defaults for
// anything unset. Model, base URL, and API key fall through empty so
// the ai package applies its own defaults and credential checks.
func FromEnv() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	claude := filepath.Join(home, ".claude")

	c := &Config{
		SessionsDir:      envOr(EnvSessionsDir, filepath.Join(claude, "projects")),
		HandoffsDir:      envOr(EnvOutputDir, filepath.Join(claude, "handoffs")),
		TasksDir:         envOr(EnvTasksDir, filepath.Join(claude, "tasks")),
		Model:            os.Getenv(EnvModel),
		BaseURL:          os.Getenv(EnvBaseURL),
		APIKey:           os.Getenv(EnvAPIKey),
		InstructionsFile: os.Getenv(EnvInstructionsFile),
		SchemaFile:       os.Getenv(EnvSchemaFile),
	}
	c.IndexPath = envOr(EnvIndexPath, filepath.Join(c.HandoffsDir, "index.json"))
	return c
}

// Validate checks the path settings. Credentials are checked by the ai
// package only when a real extraction run is requested.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SessionsDir, validation.Required),
		validation.Field(&c.HandoffsDir, validation.Required),
		validation.Field(&c.IndexPath, validation.Required),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
