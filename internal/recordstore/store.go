// Package recordstore defines the contract of the remote record store the
// registry synchronizes against: two collections, permits and users, reached
// over a request/response API. Implementations live in the rest and pg
// subpackages; an in-memory implementation backs tests and smoke runs.
package recordstore

import (
	"context"

	"ptaregistry.org/internal/registry"
)

// UserUpdate carries a partial update for a user record. Name, Username and
// Role are always resubmitted; a nil Password means "retain existing".
type UserUpdate struct {
	Name     string
	Username string
	Role     registry.Role
	Password *string
}

// Store is the full record-store contract.
type Store interface {
	// ListPermits returns every permit ordered by createdAt descending.
	ListPermits(ctx context.Context) ([]registry.Permit, error)
	// InsertPermit appends one permit record.
	InsertPermit(ctx context.Context, p registry.Permit) error
	// DeletePermit removes the permit with the given id. Irreversible.
	DeletePermit(ctx context.Context, id string) error

	// ListUsers returns every user, unordered.
	ListUsers(ctx context.Context) ([]registry.User, error)
	// InsertUser appends one user record.
	InsertUser(ctx context.Context, u registry.User) error
	// UpdateUser applies a partial update to the user with the given id.
	UpdateUser(ctx context.Context, id string, upd UserUpdate) error
	// DeleteUser removes the user with the given id.
	DeleteUser(ctx context.Context, id string) error
}
