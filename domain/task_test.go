package domain

import (
	"errors"
	"testing"
)

func TestPriorityValid(t *testing.T) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh} {
		if !p.Valid() {
			t.Fatalf("expected %q to be valid", p)
		}
	}
	for _, p := range []Priority{"", "urgent", "low"} {
		if p.Valid() {
			t.Fatalf("expected %q to be invalid", p)
		}
	}
}

func TestDraftNormalize(t *testing.T) {
	d := Draft{Title: "  Write report ", Description: " weekly status\n", Category: "\tWork "}
	got := d.Normalize()

	if got.Title != "Write report" {
		t.Fatalf("unexpected title: %q", got.Title)
	}
	if got.Description != "weekly status" {
		t.Fatalf("unexpected description: %q", got.Description)
	}
	if got.Category != "Work" {
		t.Fatalf("unexpected category: %q", got.Category)
	}
	if got.Priority != PriorityMedium {
		t.Fatalf("expected default priority Medium, got %q", got.Priority)
	}
}

func TestDraftValidate(t *testing.T) {
	tests := []struct {
		name      string
		draft     Draft
		wantField string
	}{
		{name: "valid", draft: Draft{Title: "a", Category: "b", Priority: PriorityLow}},
		{name: "missing title", draft: Draft{Category: "b", Priority: PriorityLow}, wantField: "title"},
		{name: "blank title", draft: Draft{Title: "   ", Category: "b", Priority: PriorityLow}, wantField: "title"},
		{name: "missing category", draft: Draft{Title: "a", Priority: PriorityLow}, wantField: "category"},
		{name: "bad priority", draft: Draft{Title: "a", Category: "b", Priority: "urgent"}, wantField: "priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Fatalf("expected field %q, got %q", tt.wantField, verr.Field)
			}
		})
	}
}

func TestSuggestionApply(t *testing.T) {
	draft := Draft{
		Title:       "old title",
		Description: "keep me",
		Category:    "old",
		Priority:    PriorityLow,
		Completed:   true,
	}
	s := Suggestion{Title: "new title", Category: "Planning", Priority: PriorityHigh, Insight: "x"}

	got := s.Apply(draft)

	if got.Title != "new title" || got.Category != "Planning" || got.Priority != PriorityHigh {
		t.Fatalf("suggestion fields not applied: %#v", got)
	}
	if got.Description != "keep me" {
		t.Fatalf("description must be left alone, got %q", got.Description)
	}
	if !got.Completed {
		t.Fatal("completed must be left alone")
	}
}
