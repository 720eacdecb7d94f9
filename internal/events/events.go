// Package events fans complaint lifecycle changes out to other services.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/haritsetu/backend/internal/models"
)

type Type string

const (
	ComplaintSubmitted Type = "complaint.submitted"
	ComplaintUpdated   Type = "complaint.updated"
	ComplaintCommented Type = "complaint.commented"
)

type Event struct {
	Type        Type                     `json:"type"`
	ComplaintID uint                     `json:"complaint_id"`
	ActorID     uint                     `json:"actor_id"`
	CreatorID   uint                     `json:"creator_id"`
	AssignedTo  *uint                    `json:"assigned_to,omitempty"`
	Status      models.ComplaintStatus   `json:"status"`
	Priority    models.ComplaintPriority `json:"priority"`
	UpdateID    *uint                    `json:"update_id,omitempty"`
	OccurredAt  time.Time                `json:"occurred_at"`
}

// NewComplaintEvent captures the complaint's state after the change.
func NewComplaintEvent(t Type, actorID uint, c *models.Complaint, at time.Time) Event {
	return Event{
		Type:        t,
		ComplaintID: c.ID,
		ActorID:     actorID,
		CreatorID:   c.UserID,
		AssignedTo:  c.AssignedTo,
		Status:      c.Status,
		Priority:    c.Priority,
		OccurredAt:  at,
	}
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. Used when Redis is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                        { return nil }
