package auth

import (
	"context"

	"github.com/Freeeeeet/lab_scheduler/internal/model"
)

type actorKey struct{}

// WithActor кладёт actor в контекст запроса
func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom достаёт actor из контекста
func ActorFrom(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(model.Actor)
	return actor, ok
}
