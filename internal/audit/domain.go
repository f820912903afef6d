// Package audit exposes the audit trail written by the admin and
// oversight flows for inspection.
package audit

import "time"

// Entry is one persisted audit record.
type Entry struct {
	ID         int64          `json:"id"`
	ActorID    int64          `json:"actor_id"`
	Action     string         `json:"action"`
	Entity     string         `json:"entity"`
	EntityID   string         `json:"entity_id"`
	Meta       map[string]any `json:"meta,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Filter narrows audit listings.
type Filter struct {
	ActorID  *int64
	Entity   string
	EntityID string
	Action   string
	Page     int
	PerPage  int
}
