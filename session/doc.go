// Package session converts raw Claude Code session transcripts (append-only
// JSONL files) into normalized turn sequences and markdown.
//
// Transcript files may be live-tailed, so a malformed or partially written
// trailing record is skipped rather than failing the whole parse. Noise
// records (file snapshots, queue operations, progress events) are dropped
// before turns are assembled.
package session
