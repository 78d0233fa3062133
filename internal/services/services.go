package services

import (
	"context"

	"github.com/nbv3/kip-ventory/internal/common"
	"github.com/nbv3/kip-ventory/internal/models"
)

// requireUser returns the authenticated user from the context.
func requireUser(ctx context.Context) (*models.User, error) {
	actor, ok := common.ActingUserFromContext(ctx)
	if !ok {
		return nil, &common.PermissionError{Reason: "authentication required"}
	}
	return actor, nil
}

// requireAdmin returns the authenticated user, rejecting non-administrators.
func requireAdmin(ctx context.Context) (*models.User, error) {
	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, &common.PermissionError{Reason: "administrator privileges required"}
	}
	return actor, nil
}
