// Package memory provides an in-memory implementation of the store
// interfaces. Records live only as long as the process; it backs tests
// and --backend=memory runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/getstubd/stubd/pkg/store"
	"github.com/getstubd/stubd/pkg/stub"
)

// MemoryStore implements store.Store with slices guarded by a RWMutex.
// Slices keep creation order, which the resolution tie-breaks rely on.
type MemoryStore struct {
	mu        sync.RWMutex
	projects  []*stub.Project
	endpoints []*stub.Endpoint
	settings  *stub.Settings
}

// New creates an empty in-memory store.
func New() *MemoryStore {
	return &MemoryStore{}
}

// Open is a no-op for the memory backend.
func (s *MemoryStore) Open(ctx context.Context) error { return nil }

// Close is a no-op for the memory backend.
func (s *MemoryStore) Close() error { return nil }

// Projects returns the project store.
func (s *MemoryStore) Projects() store.ProjectStore { return &projectStore{s: s} }

// Endpoints returns the endpoint store.
func (s *MemoryStore) Endpoints() store.EndpointStore { return &endpointStore{s: s} }

// Settings returns the settings store.
func (s *MemoryStore) Settings() store.SettingsStore { return &settingsStore{s: s} }

// projectStore implements store.ProjectStore.
type projectStore struct {
	s *MemoryStore
}

func (p *projectStore) List(ctx context.Context) ([]*stub.Project, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()

	result := make([]*stub.Project, len(p.s.projects))
	for i, proj := range p.s.projects {
		result[i] = proj.Clone()
	}
	return result, nil
}

func (p *projectStore) Get(ctx context.Context, id string) (*stub.Project, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()

	for _, proj := range p.s.projects {
		if proj.ID == id {
			return proj.Clone(), nil
		}
	}
	return nil, store.ErrNotFound
}

func (p *projectStore) Create(ctx context.Context, project *stub.Project) error {
	if project.ID == "" {
		return store.ErrInvalidID
	}

	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	for _, existing := range p.s.projects {
		if existing.ID == project.ID {
			return store.ErrAlreadyExists
		}
	}

	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	if project.UpdatedAt.IsZero() {
		project.UpdatedAt = now
	}

	p.s.projects = append(p.s.projects, project.Clone())
	return nil
}

func (p *projectStore) Update(ctx context.Context, project *stub.Project) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	for i, existing := range p.s.projects {
		if existing.ID == project.ID {
			project.UpdatedAt = time.Now().UTC()
			p.s.projects[i] = project.Clone()
			return nil
		}
	}
	return store.ErrNotFound
}

func (p *projectStore) Delete(ctx context.Context, id string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	for i, existing := range p.s.projects {
		if existing.ID == id {
			p.s.projects = append(p.s.projects[:i], p.s.projects[i+1:]...)
			p.s.deleteEndpointsLocked(id)
			return nil
		}
	}
	return store.ErrNotFound
}

// deleteEndpointsLocked removes all endpoints of a project.
// Must be called with s.mu held for writing.
func (s *MemoryStore) deleteEndpointsLocked(projectID string) int {
	kept := s.endpoints[:0]
	removed := 0
	for _, e := range s.endpoints {
		if e.ProjectID == projectID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.endpoints = kept
	return removed
}

// endpointStore implements store.EndpointStore.
type endpointStore struct {
	s *MemoryStore
}

func (e *endpointStore) List(ctx context.Context, filter *store.EndpointFilter) ([]*stub.Endpoint, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()

	var result []*stub.Endpoint
	for _, ep := range e.s.endpoints {
		if filter.Matches(ep) {
			result = append(result, ep.Clone())
		}
	}
	return result, nil
}

func (e *endpointStore) Get(ctx context.Context, id string) (*stub.Endpoint, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()

	for _, ep := range e.s.endpoints {
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

	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	for _, existing := range e.s.endpoints {
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

	e.s.endpoints = append(e.s.endpoints, endpoint.Clone())
	return nil
}

func (e *endpointStore) Update(ctx context.Context, endpoint *stub.Endpoint) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	for i, existing := range e.s.endpoints {
		if existing.ID == endpoint.ID {
			endpoint.UpdatedAt = time.Now().UTC()
			e.s.endpoints[i] = endpoint.Clone()
			return nil
		}
	}
	return store.ErrNotFound
}

func (e *endpointStore) Delete(ctx context.Context, id string) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	for i, existing := range e.s.endpoints {
		if existing.ID == id {
			e.s.endpoints = append(e.s.endpoints[:i], e.s.endpoints[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (e *endpointStore) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	return e.s.deleteEndpointsLocked(projectID), nil
}

// settingsStore implements store.SettingsStore.
type settingsStore struct {
	s *MemoryStore
}

func (st *settingsStore) Get(ctx context.Context) (*stub.Settings, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	if st.s.settings == nil {
		return stub.DefaultSettings(), nil
	}
	return st.s.settings.Clone(), nil
}

func (st *settingsStore) Update(ctx context.Context, patch *stub.SettingsPatch) (*stub.Settings, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	current := st.s.settings
	if current == nil {
		current = stub.DefaultSettings()
	}
	current.Apply(patch)
	st.s.settings = current
	return current.Clone(), nil
}
