// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/band-manager/internal/model"
)

// Show change actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// ShowChangedEvent is published whenever a show is created or edited.  It
// carries enough to write an activity line without querying the database.
// Money fields are deliberately absent: the activity log is readable by
// operators who may not see amounts.
type ShowChangedEvent struct {
	EventID    string    `json:"event_id"`
	Action     string    `json:"action"`
	ShowID     uint64    `json:"show_id"`
	Title      string    `json:"title"`
	City       string    `json:"city"`
	ShowDate   string    `json:"show_date,omitempty"`
	Status     string    `json:"status"`
	IsPaid     bool      `json:"is_paid"`
	ActorID    uint64    `json:"actor_id"`
	Actor      string    `json:"actor"`
	Changed    []string  `json:"changed,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewShowChangedEvent builds an event for s with a fresh id.
func NewShowChangedEvent(action string, s model.Show, actorID uint64, actor string, changed []string) ShowChangedEvent {
	ev := ShowChangedEvent{
		EventID:    uuid.NewString(),
		Action:     action,
		ShowID:     s.ID,
		Title:      s.Title,
		City:       s.City,
		Status:     s.Status,
		IsPaid:     s.IsPaid,
		ActorID:    actorID,
		Actor:      actor,
		Changed:    changed,
		OccurredAt: time.Now().UTC(),
	}
	if !s.ShowDate.IsZero() {
		ev.ShowDate = s.ShowDate.UTC().Format(time.RFC3339)
	}
	return ev
}
