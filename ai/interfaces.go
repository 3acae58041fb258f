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
	"context"

	"github.com/poiesic/handoff/core"
)

// HandoffExtractor turns a rendered session transcript into a structured
// handoff payload.
// Implementations must be thread-safe for concurrent use.
type HandoffExtractor interface {
	// ExtractHandoff sends the transcript markdown to the extraction
	// service and parses its reply into a Handoff. The returned payload
	// is unvalidated and its identity fields are untrusted.
	// There is no automatic retry; any transport failure, non-success
	// status, empty reply, or unparsable reply is returned as an error.
	ExtractHandoff(ctx context.Context, transcriptMarkdown string) (*core.Handoff, error)
}
