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


// Package index maintains the persistent handoff index used by retrieval.
//
// The index is one JSON snapshot on disk: a forward map from session id
// to document plus two inverted maps (by project, by keyword). It is
// never edited in place; every update loads the snapshot, merges in
// memory, and atomically replaces the file, so concurrent or
// crash-interrupted readers always see a fully-formed snapshot.
//
// Updates are serialized across independent OS processes with an
// exclusive advisory lock on a sidecar file derived from the index path.
// The lock is a separate resource so acquisition never conflicts with
// the atomic-replace step.
//
// A snapshot that fails to parse is treated as corruption: it is copied
// aside under a timestamped quarantine name and the update continues
// from an empty index. Corruption is never fatal.
package index
