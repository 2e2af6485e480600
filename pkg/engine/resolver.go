// Endpoint resolution for the stub engine.

package engine

import (
	"context"
	"strings"

	"github.com/getstubd/stubd/pkg/store"
	"github.com/getstubd/stubd/pkg/stub"
)

// Match is the result of resolving a request against the stored projects
// and endpoints.
type Match struct {
	// Project is the project whose base path claimed the request.
	Project *stub.Project

	// Endpoint is the endpoint that will serve the response.
	Endpoint *stub.Endpoint

	// RelativePath is the request path with the project's base path
	// removed ("/" when the request hit the base path exactly).
	RelativePath string
}

// Resolver matches incoming requests to stored endpoints.
type Resolver struct {
	store store.Store
}

// NewResolver creates a resolver reading from the given store.
func NewResolver(st store.Store) *Resolver {
	return &Resolver{store: st}
}

// Resolve finds the endpoint for a method and path. It returns nil with a
// nil error when nothing matches; a non-nil error means the store failed.
//
// Project selection prefers the longest base path that prefixes the
// request path, so /api/v1 claims /api/v1/users ahead of /api. Ties on
// length fall to the project stored first. Within the chosen project the
// first stored endpoint with an exact relative-path and method match wins;
// the method comparison is case-sensitive and disabled endpoints never
// match. If the chosen project has no matching endpoint, resolution stops
// there; shorter-prefix projects are not consulted.
func (r *Resolver) Resolve(ctx context.Context, method, path string) (*Match, error) {
	projects, err := r.store.Projects().List(ctx)
	if err != nil {
		return nil, err
	}

	var project *stub.Project
	bestLen := -1
	for _, p := range projects {
		// A root base path of "/" trims to "", making it a catch-all
		// that any longer matching base path outranks.
		base := strings.TrimSuffix(p.BasePath, "/")
		if strings.HasPrefix(path, base) && len(base) > bestLen {
			project = p
			bestLen = len(base)
		}
	}
	if project == nil {
		return nil, nil
	}

	relative := path[bestLen:]
	if relative == "" {
		relative = "/"
	}

	endpoints, err := r.store.Endpoints().List(ctx, &store.EndpointFilter{ProjectID: project.ID})
	if err != nil {
		return nil, err
	}
	for _, ep := range endpoints {
		if ep.Enabled && ep.Path == relative && ep.Method == method {
			return &Match{Project: project, Endpoint: ep, RelativePath: relative}, nil
		}
	}
	return nil, nil
}
