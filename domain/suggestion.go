package domain

// Provenance identifies which tier produced a suggestion. The offline
// tag is a user-visible trust signal: the view labels such suggestions
// as degraded.
type Provenance string

const (
	ProvenancePrimary Provenance = "primary"
	ProvenanceOffline Provenance = "offline"
	ProvenanceLocal   Provenance = "local"
)

// Suggestion is an immutable task proposal. Canned suggestions come
// from the local pool; AI-derived ones are normalized from an
// enhancement response, with the extra fields populated.
type Suggestion struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category"`
	Priority    Priority `json:"priority"`
	Icon        string   `json:"icon,omitempty"`
	Reason      string   `json:"reason,omitempty"`

	// AI-derived extras, zero for canned suggestions.
	EstimatedHours float64  `json:"estimated_time,omitempty"`
	Breakdown      []string `json:"task_breakdown,omitempty"`
	Insight        string   `json:"ai_insights,omitempty"`

	Provenance Provenance `json:"provenance,omitempty"`
}

// Apply copies the suggestion's title, category and priority onto the
// draft. The draft's description and completion state are left alone.
func (s Suggestion) Apply(d Draft) Draft {
	d.Title = s.Title
	d.Category = s.Category
	d.Priority = s.Priority
	return d
}
