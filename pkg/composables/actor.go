package composables

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/vinadepot/depot-sdk/modules/depot/permissions"
	"github.com/vinadepot/depot-sdk/pkg/constants"
)

var ErrNoActorFound = errors.New("no actor found in context")

// Actor is the already-authenticated identity performing an action. The auth
// layer is an external collaborator; the core only authorizes against Role.
type Actor struct {
	ID   uuid.UUID
	Role permissions.Role
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, constants.ActorKey, actor)
}

func UseActor(ctx context.Context) (Actor, error) {
	actor, ok := ctx.Value(constants.ActorKey).(Actor)
	if !ok {
		return Actor{}, ErrNoActorFound
	}
	return actor, nil
}
