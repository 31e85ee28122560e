package domain

import "strings"

// Priority classifies how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Valid reports whether p is one of the three known levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents a single tracker item as persisted by the remote
// task-collection resource. The ID is assigned server-side and never
// changes once created.
type Task struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category"`
	Priority    Priority `json:"priority"`
	Completed   bool     `json:"completed"`
}

// Draft is the mutable, pre-persistence form of a Task used while
// composing or editing. It never reaches the synchronization engine
// until submitted.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Priority    Priority `json:"priority"`
	Completed   bool     `json:"completed"`
}

// Normalize trims surrounding whitespace from the free-text fields and
// defaults an unset priority to Medium.
func (d Draft) Normalize() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Category = strings.TrimSpace(d.Category)
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	return d
}

// Validate reports the first problem that must block the submission
// before any remote call is attempted.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ValidationError{Field: "title", Reason: "title is required"}
	}
	if strings.TrimSpace(d.Category) == "" {
		return ValidationError{Field: "category", Reason: "category is required"}
	}
	if !d.Priority.Valid() {
		return ValidationError{Field: "priority", Reason: "priority must be Low, Medium or High"}
	}
	return nil
}
