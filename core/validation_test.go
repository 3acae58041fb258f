package core

import (
	"errors"
	"testing"
)

func validHandoff() *Handoff {
	return &Handoff{
		SessionID:       "abc12345",
		Date:            "2025-11-02",
		Headline:        "Built the batch indexer",
		Projects:        []string{"eywa"},
		Keywords:        []string{"index", "retrieval"},
		Substance:       7,
		Duration:        "1h 5m",
		DurationMinutes: 65,
		Model:           "anthropic/claude-sonnet-4.5",
		WhatHappened:    "Wired the pipeline end to end.",
	}
}

func TestValidateHandoff(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(h *Handoff)
		wantErr bool
	}{
		{
			name:    "valid handoff",
			mutate:  func(h *Handoff) {},
			wantErr: false,
		},
		{
			name:    "empty optional sections are fine",
			mutate:  func(h *Handoff) { h.Insights = ""; h.OpenThreads = "" },
			wantErr: false,
		},
		{
			name:    "no projects or keywords",
			mutate:  func(h *Handoff) { h.Projects = nil; h.Keywords = nil },
			wantErr: false,
		},
		{
			name:    "missing session id",
			mutate:  func(h *Handoff) { h.SessionID = "" },
			wantErr: true,
		},
		{
			name:    "session id too short",
			mutate:  func(h *Handoff) { h.SessionID = "ab" },
			wantErr: true,
		},
		{
			name:    "missing date",
			mutate:  func(h *Handoff) { h.Date = "" },
			wantErr: true,
		},
		{
			name:    "non-ISO date",
			mutate:  func(h *Handoff) { h.Date = "Nov 2, 2025" },
			wantErr: true,
		},
		{
			name:    "missing headline",
			mutate:  func(h *Handoff) { h.Headline = "" },
			wantErr: true,
		},
		{
			name:    "substance missing",
			mutate:  func(h *Handoff) { h.Substance = 0 },
			wantErr: true,
		},
		{
			name:    "substance above range",
			mutate:  func(h *Handoff) { h.Substance = 11 },
			wantErr: true,
		},
		{
			name:    "negative duration minutes",
			mutate:  func(h *Handoff) { h.DurationMinutes = -3 },
			wantErr: true,
		},
		{
			name:    "blank project entry",
			mutate:  func(h *Handoff) { h.Projects = []string{"eywa", ""} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := validHandoff()
			tt.mutate(h)

			err := ValidateHandoff(h)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !errors.Is(err, ErrInvalidHandoff) {
					t.Errorf("error %v does not wrap ErrInvalidHandoff", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateHandoffNil(t *testing.T) {
	err := ValidateHandoff(nil)
	if !errors.Is(err, ErrInvalidHandoff) {
		t.Fatalf("expected ErrInvalidHandoff, got %v", err)
	}
}

func TestUnitID(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/sessions/2f1c9eab-0d7a-4a41-9a6e-3c80b8d2f611.jsonl", "2f1c9eab"},
		{"deadbeefcafe.jsonl", "deadbeef"},
		{"abc1.jsonl", "abc1"},
		{"/deep/nested/dir/0123456789.jsonl", "01234567"},
	}

	for _, tt := range tests {
		if got := UnitID(tt.path); got != tt.want {
			t.Errorf("UnitID(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestValidSessionID(t *testing.T) {
	if !ValidSessionID("abc1") {
		t.Error("abc1 should be valid")
	}
	if ValidSessionID("ab") {
		t.Error("ab should be invalid")
	}
}
