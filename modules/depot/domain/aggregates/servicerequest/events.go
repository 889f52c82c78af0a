package servicerequest

import (
	"time"

	"github.com/google/uuid"

	"github.com/vinadepot/depot-sdk/modules/depot/domain/transition"
	"github.com/vinadepot/depot-sdk/modules/depot/permissions"
)

// CreatedEvent is published after a request has been persisted in PENDING.
type CreatedEvent struct {
	RequestID   uuid.UUID
	ContainerNo string
	Type        RequestType
	ActorID     uuid.UUID
	At          time.Time
}

// TransitionedEvent is the notification hook of the state machine: fired
// synchronously after a successful, persisted transition. Subscribers
// (notification, chat, email collaborators) must tolerate their own
// failures; delivery problems never roll back the transition.
type TransitionedEvent struct {
	RequestID uuid.UUID
	From      transition.Status
	To        transition.Status
	ActorRole permissions.Role
	ActorID   uuid.UUID
	At        time.Time
}

// VisibilityChangedEvent is published on soft-delete and restore.
type VisibilityChangedEvent struct {
	RequestID uuid.UUID
	Scope     Scope
	Deleted   bool
	ActorID   uuid.UUID
	At        time.Time
}

func NewCreatedEvent(req *ServiceRequest, actorID uuid.UUID) CreatedEvent {
	return CreatedEvent{
		RequestID:   req.ID(),
		ContainerNo: req.ContainerNo(),
		Type:        req.Type(),
		ActorID:     actorID,
		At:          req.CreatedAt(),
	}
}

func NewTransitionedEvent(req *ServiceRequest, from transition.Status, actorRole permissions.Role, actorID uuid.UUID) TransitionedEvent {
	return TransitionedEvent{
		RequestID: req.ID(),
		From:      from,
		To:        req.Status(),
		ActorRole: actorRole,
		ActorID:   actorID,
		At:        req.UpdatedAt(),
	}
}
