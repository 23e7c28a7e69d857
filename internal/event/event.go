package event

import "time"

// Names of the lifecycle events published by the services.
const (
	UserCreated     = "user.created"
	UserUpdated     = "user.updated"
	UserDeleted     = "user.deleted"
	UserRestored    = "user.restored"
	ProjectCreated  = "project.created"
	ProjectArchived = "project.archived"
	TaskCreated     = "task.created"
)

// Event carries a lifecycle notification. Payload is the entity the event
// is about.
type Event struct {
	Name       string
	Payload    any
	ActorID    string
	OccurredAt time.Time
}

func New(name string, payload any, actorID string) Event {
	return Event{
		Name:       name,
		Payload:    payload,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}
