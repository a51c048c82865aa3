package recordstore

import (
	"context"
	"sort"
	"sync"

	"ptaregistry.org/internal/registry"
)

// InMemory implements Store with in-process concurrency safety. It backs
// tests, the smoke binary, and demo runs without a configured remote.
type InMemory struct {
	mu      sync.RWMutex
	permits map[string]registry.Permit
	users   map[string]registry.User
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		permits: make(map[string]registry.Permit),
		users:   make(map[string]registry.User),
	}
}

func (s *InMemory) ListPermits(ctx context.Context) ([]registry.Permit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]registry.Permit, 0, len(s.permits))
	for _, p := range s.permits {
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemory) InsertPermit(ctx context.Context, p registry.Permit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permits[p.ID] = p
	return nil
}

func (s *InMemory) DeletePermit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.permits[id]; !ok {
		return registry.ErrNotFound
	}
	delete(s.permits, id)
	return nil
}

func (s *InMemory) ListUsers(ctx context.Context) ([]registry.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]registry.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	// Stable order keeps "first match wins" deterministic across resyncs.
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) InsertUser(ctx context.Context, u registry.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *InMemory) UpdateUser(ctx context.Context, id string, upd UserUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return registry.ErrNotFound
	}
	u.Name = upd.Name
	u.Username = upd.Username
	u.Role = upd.Role
	if upd.Password != nil {
		u.Password = *upd.Password
	}
	s.users[id] = u
	return nil
}

func (s *InMemory) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return registry.ErrNotFound
	}
	delete(s.users, id)
	return nil
}
