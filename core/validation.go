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


package core

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateHandoff validates a Handoff against the schema contract.
//
// Validation is structural only; semantic correctness of the extracted
// content is the extraction service's responsibility.
//
// Validation rules:
//   - SessionID must be at least 4 characters
//   - Date must be an ISO calendar date (YYYY-MM-DD)
//   - Headline must not be empty
//   - Substance must be in [1, 10]
//   - DurationMinutes must be >= 0
//   - Projects and Keywords entries must be non-empty strings
func ValidateHandoff(h *Handoff) error {
	if h == nil {
		return fmt.Errorf("%w: handoff is nil", ErrInvalidHandoff)
	}

	err := validation.ValidateStruct(h,
		validation.Field(&h.SessionID, validation.Required, validation.Length(4, 0)),
		validation.Field(&h.Date, validation.Required, validation.Match(dateRe).Error("must be YYYY-MM-DD")),
		validation.Field(&h.Headline, validation.Required),
		validation.Field(&h.Substance, validation.Required, validation.Min(1), validation.Max(10)),
		validation.Field(&h.DurationMinutes, validation.Min(0)),
		validation.Field(&h.Projects, validation.Each(validation.Required)),
		validation.Field(&h.Keywords, validation.Each(validation.Required)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidHandoff, err)
	}

	return nil
}

// ValidSessionID reports whether id can serve as an index key.
func ValidSessionID(id string) bool {
	return len(id) >= 4
}
