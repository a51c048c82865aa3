// Package session holds the in-memory snapshot of the remote record store.
// The snapshot is refreshed wholesale after every mutation; readers always
// observe either the pre-sync or the post-sync state, never a mix.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"ptaregistry.org/internal/recordstore"
	"ptaregistry.org/internal/registry"
)

// Default account seeded on first contact with an empty users collection.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "pta123"
	DefaultAdminName     = "Arthur Admin"
)

// Store caches the permits and users collections.
type Store struct {
	records recordstore.Store

	mu      sync.RWMutex
	permits []registry.Permit
	users   []registry.User
	synced  bool
}

// New creates a store bound to the given record store. The cache is empty
// until the first Resync.
func New(records recordstore.Store) *Store {
	return &Store{records: records}
}

// Resync replaces both cached collections with a fresh full read. If the
// users collection comes back empty it seeds the default admin account and
// re-reads. Any read failure leaves the previous snapshot untouched and
// surfaces ErrSyncFailed.
func (s *Store) Resync(ctx context.Context) error {
	permits, err := s.records.ListPermits(ctx)
	if err != nil {
		return fmt.Errorf("%w: read permits: %v", registry.ErrSyncFailed, err)
	}
	users, err := s.records.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("%w: read users: %v", registry.ErrSyncFailed, err)
	}
	if len(users) == 0 {
		seed := registry.User{
			ID:       uuid.NewString(),
			Username: DefaultAdminUsername,
			Password: DefaultAdminPassword,
			Role:     registry.RoleAdmin,
			Name:     DefaultAdminName,
		}
		if err := s.records.InsertUser(ctx, seed); err != nil {
			return fmt.Errorf("%w: seed default admin: %v", registry.ErrSyncFailed, err)
		}
		if users, err = s.records.ListUsers(ctx); err != nil {
			return fmt.Errorf("%w: re-read users: %v", registry.ErrSyncFailed, err)
		}
	}

	s.mu.Lock()
	s.permits = permits
	s.users = users
	s.synced = true
	s.mu.Unlock()
	return nil
}

// Synced reports whether at least one Resync has completed.
func (s *Store) Synced() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.synced
}

// Permits returns a copy of the cached permits, creation-descending.
func (s *Store) Permits() []registry.Permit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]registry.Permit, len(s.permits))
	copy(out, s.permits)
	return out
}

// Users returns a copy of the cached users.
func (s *Store) Users() []registry.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]registry.User, len(s.users))
	copy(out, s.users)
	return out
}

// Snapshot returns both collections from the same locked read.
func (s *Store) Snapshot() ([]registry.Permit, []registry.User) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	permits := make([]registry.Permit, len(s.permits))
	copy(permits, s.permits)
	users := make([]registry.User, len(s.users))
	copy(users, s.users)
	return permits, users
}
