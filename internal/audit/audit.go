package audit

import (
	"context"
	"time"
)

// Actions recorded for entity lifecycle changes.
const (
	ActionCreate     = "CREATE"
	ActionUpdate     = "UPDATE"
	ActionSoftDelete = "SOFT_DELETE"
	ActionArchive    = "ARCHIVE"
	ActionRestore    = "RESTORE"
)

// Change is a single audit trail entry. OldValues and NewValues hold full
// entity snapshots and may be nil when the action has no before or after
// state (CREATE has no old values, SOFT_DELETE records no new values).
type Change struct {
	ID         string    `json:"id"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	Action     string    `json:"action"`
	OldValues  any       `json:"oldValues,omitempty"`
	NewValues  any       `json:"newValues,omitempty"`
	ActorID    string    `json:"actorId,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Logger records entity changes. Implementations must never let a recording
// failure surface into the request path.
type Logger interface {
	LogChange(ctx context.Context, change Change) error
}

// Reader queries recorded changes for an entity.
type Reader interface {
	History(ctx context.Context, entityType, entityID string, limit int) ([]Change, error)
}
