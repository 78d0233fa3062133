package common

import (
	"context"

	"github.com/nbv3/kip-ventory/internal/models"
)

type contextKey string

const actingUserKey contextKey = "acting_user"

// WithActingUser stores the authenticated user on the context. The engine
// trusts this user: authentication happened upstream, coarse role checks
// happen in middleware and ownership checks happen in the services.
func WithActingUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, actingUserKey, user)
}

// ActingUserFromContext returns the authenticated user, if any.
func ActingUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(actingUserKey).(*models.User)
	return user, ok
}
