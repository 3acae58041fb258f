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


// Package ai provides abstractions for the extraction service used to
// turn session transcripts into structured handoffs.
//
// The package defines the HandoffExtractor interface and its shared
// configuration. The pipeline depends only on the abstraction; concrete
// implementations live in sub-packages:
//
//   - ai/openrouter: production implementation using the OpenRouter
//     chat-completions API (OpenAI-compatible)
//   - ai/mock: test doubles for unit testing without network access
//
// Public constructors in openrouter return the ai.HandoffExtractor
// interface to enforce abstraction; mock constructors return concrete
// types so tests can inject behavior and assert call counts.
//
// The extraction service is untrusted for identity fields: callers must
// normalize session id and date against transcript-derived values after
// extraction.
package ai
