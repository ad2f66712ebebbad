// Package audit records who changed which entity and how. Recording is a side
// channel: a failed write is logged and never undoes the business change.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Action is the kind of change recorded.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entity types written by the lead lifecycle.
const (
	EntityLead    = "lead"
	EntityClient  = "client"
	EntityProject = "development_project"
)

var errInvalidEntry = errors.New("audit: entry requires actor, action, entity type and entity id")

// Entry is one audit record.
type Entry struct {
	ID         uuid.UUID      `json:"id"`
	ActorID    uuid.UUID      `json:"actorId"`
	Action     Action         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   uuid.UUID      `json:"entityId"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Validate checks the mandatory fields.
func (e Entry) Validate() error {
	if e.ActorID == uuid.Nil || e.EntityID == uuid.Nil || e.EntityType == "" {
		return errInvalidEntry
	}
	switch e.Action {
	case ActionCreate, ActionUpdate, ActionDelete:
		return nil
	default:
		return errInvalidEntry
	}
}

func (e Entry) metadataJSON() ([]byte, error) {
	if len(e.Metadata) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(e.Metadata)
}

// Sink accepts audit entries. Implementations may write synchronously or
// hand the entry to a background queue.
type Sink interface {
	Record(ctx context.Context, entry Entry) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, entry Entry) error

// Record calls f.
func (f SinkFunc) Record(ctx context.Context, entry Entry) error {
	return f(ctx, entry)
}
