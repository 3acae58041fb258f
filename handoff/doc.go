// Package handoff reads and writes handoff documents: markdown files with
// a YAML frontmatter preamble, a headline, and named narrative sections
// ("What Happened", "Insights", "Open Threads").
//
// The on-disk file is the authoritative form of a handoff. The index
// commit step re-parses the written file rather than trusting in-memory
// state, so Render and ParseFile must round-trip every indexed field.
package handoff
