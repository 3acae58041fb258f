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

import "errors"

// Domain validation errors
var (
	// ErrInvalidHandoff indicates a Handoff failed validation.
	ErrInvalidHandoff = errors.New("invalid handoff")

	// ErrInvalidSessionID indicates a session identifier is missing or malformed.
	ErrInvalidSessionID = errors.New("invalid session id")

	// ErrInvalidDate indicates a date is not an ISO calendar date.
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

	// ErrEmptyHeadline indicates the Headline field is empty.
	ErrEmptyHeadline = errors.New("headline cannot be empty")
)
