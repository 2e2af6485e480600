package file

import (
	"context"
	"time"

	"github.com/getstubd/stubd/pkg/store"
	"github.com/getstubd/stubd/pkg/stub"
)

// endpointStore implements store.EndpointStore backed by a FileStore.
type endpointStore struct {
	fs *FileStore
}

func (e *endpointStore) List(ctx context.Context, filter *store.EndpointFilter) ([]*stub.Endpoint, error) {
	e.fs.mu.RLock()
	defer e.fs.mu.RUnlock()

	out := make([]*stub.Endpoint, 0, len(e.fs.data.Endpoints))
	for _, ep := range e.fs.data.Endpoints {
		if filter.Matches(ep) {
			out = append(out, ep.Clone())
		}
	}
	return out, nil
}

func (e *endpointStore) Get(ctx context.Context, id string) (*stub.Endpoint, error) {
	e.fs.mu.RLock()
	defer e.fs.mu.RUnlock()

	for _, ep := range e.fs.data.Endpoints {
		if ep.ID == id {
			return ep.Clone(), nil
		}
	}
	return nil, store.ErrNotFound
}

func (e *endpointStore) Create(ctx context.Context, endpoint *stub.Endpoint) error {
	if endpoint.ID == "" {
		return store.ErrInvalidID
	}

	e.fs.mu.Lock()
	defer e.fs.mu.Unlock()

	if e.fs.cfg.ReadOnly {
		return store.ErrReadOnly
	}
	for _, existing := range e.fs.data.Endpoints {
		if existing.ID == endpoint.ID {
			return store.ErrAlreadyExists
		}
	}

	now := time.Now().UTC()
	if endpoint.CreatedAt.IsZero() {
		endpoint.CreatedAt = now
	}
	if endpoint.UpdatedAt.IsZero() {
		endpoint.UpdatedAt = now
	}

	e.fs.data.Endpoints = append(e.fs.data.Endpoints, endpoint.Clone())
	e.fs.markDirty()
	return nil
}

func (e *endpointStore) Update(ctx context.Context, endpoint *stub.Endpoint) error {
	if endpoint.ID == "" {
		return store.ErrInvalidID
	}

	e.fs.mu.Lock()
	defer e.fs.mu.Unlock()

	if e.fs.cfg.ReadOnly {
		return store.ErrReadOnly
	}
	for i, existing := range e.fs.data.Endpoints {
		if existing.ID == endpoint.ID {
			endpoint.UpdatedAt = time.Now().UTC()
			e.fs.data.Endpoints[i] = endpoint.Clone()
			e.fs.markDirty()
			return nil
		}
	}
	return store.ErrNotFound
}

func (e *endpointStore) Delete(ctx context.Context, id string) error {
	e.fs.mu.Lock()
	defer e.fs.mu.Unlock()

	if e.fs.cfg.ReadOnly {
		return store.ErrReadOnly
	}
	for i, existing := range e.fs.data.Endpoints {
		if existing.ID == id {
			e.fs.data.Endpoints = append(e.fs.data.Endpoints[:i], e.fs.data.Endpoints[i+1:]...)
			e.fs.markDirty()
			return nil
		}
	}
	return store.ErrNotFound
}

func (e *endpointStore) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	e.fs.mu.Lock()
	defer e.fs.mu.Unlock()

	if e.fs.cfg.ReadOnly {
		return 0, store.ErrReadOnly
	}
	removed := e.fs.deleteEndpointsLocked(projectID)
	if removed > 0 {
		e.fs.markDirty()
	}
	return removed, nil
}

// deleteEndpointsLocked removes all endpoints for a project. Caller holds fs.mu.
func (s *FileStore) deleteEndpointsLocked(projectID string) int {
	kept := s.data.Endpoints[:0]
	removed := 0
	for _, ep := range s.data.Endpoints {
		if ep.ProjectID == projectID {
			removed++
			continue
		}
		kept = append(kept, ep)
	}
	s.data.Endpoints = kept
	return removed
}
