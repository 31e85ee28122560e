package domain

// ActionKind discriminates what confirming a pending action will do.
type ActionKind string

const (
	ActionDelete ActionKind = "delete"
	ActionEdit   ActionKind = "edit"
)

// PendingAction gates a destructive or mode-switching operation between
// "requested" and "confirmed or cancelled". At most one is live at a
// time; it carries a snapshot of the target so the view can render the
// confirmation prompt (including the not-yet-completed warning on
// delete) without re-reading engine state.
type PendingAction struct {
	Token string     `json:"token"`
	Kind  ActionKind `json:"kind"`
	Task  Task       `json:"task"`
}
