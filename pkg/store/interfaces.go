package store

import (
	"context"

	"github.com/getstubd/stubd/pkg/stub"
)

// Store is the persistence port consumed by the resolver, the responder,
// and the management API.
type Store interface {
	// Open initializes the backend. It must be called exactly once,
	// before any request is served.
	Open(ctx context.Context) error
	Close() error

	Projects() ProjectStore
	Endpoints() EndpointStore
	Settings() SettingsStore
}

// ProjectStore handles project persistence.
//
// List returns projects in creation order. Resolution breaks base-path
// ties by that order, so every backend must preserve it.
type ProjectStore interface {
	List(ctx context.Context) ([]*stub.Project, error)
	Get(ctx context.Context, id string) (*stub.Project, error)
	Create(ctx context.Context, project *stub.Project) error
	Update(ctx context.Context, project *stub.Project) error

	// Delete removes the project and cascades to every endpoint that
	// belongs to it.
	Delete(ctx context.Context, id string) error
}

// EndpointFilter narrows EndpointStore.List results.
// Zero-valued fields match everything.
type EndpointFilter struct {
	ProjectID string
	Path      string
	Method    string
	Enabled   *bool
}

// EndpointStore handles endpoint persistence.
//
// List returns endpoints in creation order; duplicate (path, method) rules
// within a project resolve to the earliest one, so every backend must
// preserve that order.
type EndpointStore interface {
	List(ctx context.Context, filter *EndpointFilter) ([]*stub.Endpoint, error)
	Get(ctx context.Context, id string) (*stub.Endpoint, error)
	Create(ctx context.Context, endpoint *stub.Endpoint) error
	Update(ctx context.Context, endpoint *stub.Endpoint) error
	Delete(ctx context.Context, id string) error

	// DeleteByProject removes all endpoints of a project and returns how
	// many were removed.
	DeleteByProject(ctx context.Context, projectID string) (int, error)
}

// SettingsStore handles the settings singleton.
type SettingsStore interface {
	// Get returns the stored settings, or stub.DefaultSettings if nothing
	// has been stored yet.
	Get(ctx context.Context) (*stub.Settings, error)

	// Update merges the patch over the current settings, persists the
	// result, and returns it.
	Update(ctx context.Context, patch *stub.SettingsPatch) (*stub.Settings, error)
}

// Matches reports whether the endpoint passes the filter.
func (f *EndpointFilter) Matches(e *stub.Endpoint) bool {
	if f == nil {
		return true
	}
	if f.ProjectID != "" && e.ProjectID != f.ProjectID {
		return false
	}
	if f.Path != "" && e.Path != f.Path {
		return false
	}
	if f.Method != "" && e.Method != f.Method {
		return false
	}
	if f.Enabled != nil && e.Enabled != *f.Enabled {
		return false
	}
	return true
}
