// Seed collection types and their application to a store.

package config

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/getstubd/stubd/pkg/store"
	"github.com/getstubd/stubd/pkg/stub"
)

// seedVersion is the current seed format version. Files may omit the
// field; anything newer than this is rejected.
const seedVersion = 1

// Collection is a set of projects and endpoints declared in a seed file.
type Collection struct {
	// Version is the seed format version (optional, defaults to 1)
	Version int `json:"version,omitempty" yaml:"version,omitempty"`
	// Name labels the collection in logs
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Settings optionally patches the global settings singleton
	Settings *SeedSettings `json:"settings,omitempty" yaml:"settings,omitempty"`
	// Projects declares projects with their endpoints inline
	Projects []*SeedProject `json:"projects" yaml:"projects"`
}

// SeedProject declares a project and its endpoints.
type SeedProject struct {
	// Name identifies the project; seeding is idempotent per name
	Name string `json:"name" yaml:"name"`
	// Description is an optional longer description
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// BasePath is the literal URL prefix for the project's endpoints
	BasePath string `json:"basePath" yaml:"basePath"`
	// Endpoints declares the project's stub rules
	Endpoints []*SeedEndpoint `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`
}

// SeedEndpoint declares one stub rule inside a seed project.
type SeedEndpoint struct {
	// Path is the endpoint path relative to the project base path
	Path string `json:"path" yaml:"path"`
	// Method is the HTTP method, uppercased on load
	Method string `json:"method" yaml:"method"`
	// Enabled defaults to true when omitted
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// Response is the canned response this rule serves
	Response *SeedResponse `json:"response" yaml:"response"`
}

// SeedResponse mirrors stub.ResponseSpec but accepts the body as any
// YAML or JSON value, converted to canonical JSON on load.
type SeedResponse struct {
	Status  int               `json:"status" yaml:"status"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    any               `json:"body,omitempty" yaml:"body,omitempty"`
	DelayMs int64             `json:"delay,omitempty" yaml:"delay,omitempty"`
}

// SeedSettings is a partial override of the stored settings. Nil fields
// keep their current value.
type SeedSettings struct {
	CORSOrigins    *[]string          `json:"corsOrigins,omitempty" yaml:"corsOrigins,omitempty"`
	CORSHeaders    *[]string          `json:"corsHeaders,omitempty" yaml:"corsHeaders,omitempty"`
	CORSMethods    *[]string          `json:"corsMethods,omitempty" yaml:"corsMethods,omitempty"`
	DefaultHeaders *map[string]string `json:"defaultHeaders,omitempty" yaml:"defaultHeaders,omitempty"`
	AuthEnabled    *bool              `json:"authEnabled,omitempty" yaml:"authEnabled,omitempty"`
}

// patch converts the seed settings into a store-level settings patch.
func (s *SeedSettings) patch() *stub.SettingsPatch {
	return &stub.SettingsPatch{
		CORSOrigins:    s.CORSOrigins,
		CORSHeaders:    s.CORSHeaders,
		CORSMethods:    s.CORSMethods,
		DefaultHeaders: s.DefaultHeaders,
		AuthEnabled:    s.AuthEnabled,
	}
}

// Validate checks the collection without touching a store. Every project
// and endpoint must pass the same validation the management API applies.
func (c *Collection) Validate() error {
	if c.Version > seedVersion {
		return fmt.Errorf("unsupported seed version %d", c.Version)
	}
	seen := make(map[string]bool, len(c.Projects))
	for i, sp := range c.Projects {
		if sp == nil {
			return fmt.Errorf("projects[%d] is empty", i)
		}
		proj := &stub.Project{Name: sp.Name, BasePath: sp.BasePath}
		if err := proj.Validate(); err != nil {
			return fmt.Errorf("project %q: %w", sp.Name, err)
		}
		if seen[sp.Name] {
			return fmt.Errorf("duplicate project name %q", sp.Name)
		}
		seen[sp.Name] = true
		for _, se := range sp.Endpoints {
			if se == nil {
				return fmt.Errorf("project %q: empty endpoint entry", sp.Name)
			}
			if _, err := se.endpoint("pending"); err != nil {
				return fmt.Errorf("project %q: %w", sp.Name, err)
			}
		}
	}
	return nil
}

// endpoint converts the seed entry into a store record owned by the
// given project. The ID is left for the caller to assign.
func (e *SeedEndpoint) endpoint(projectID string) (*stub.Endpoint, error) {
	ep := &stub.Endpoint{
		ProjectID: projectID,
		Path:      e.Path,
		Method:    stub.NormalizeMethod(e.Method),
		Enabled:   e.Enabled == nil || *e.Enabled,
	}
	if e.Response != nil {
		body, err := canonicalJSON(e.Response.Body)
		if err != nil {
			return nil, fmt.Errorf("endpoint %s %s: %w", e.Method, e.Path, err)
		}
		ep.Response = &stub.ResponseSpec{
			Status:  e.Response.Status,
			Headers: e.Response.Headers,
			Body:    body,
			DelayMs: e.Response.DelayMs,
		}
	}
	if err := ep.Validate(); err != nil {
		return nil, fmt.Errorf("endpoint %s %s: %w", e.Method, e.Path, err)
	}
	return ep, nil
}

// canonicalJSON renders a decoded YAML or JSON value as compact JSON.
func canonicalJSON(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("body is not representable as JSON: %w", err)
	}
	return data, nil
}

// SeedResult summarizes what applying a collection changed.
type SeedResult struct {
	ProjectsCreated  int
	ProjectsUpdated  int
	EndpointsCreated int
	SettingsApplied  bool
}

// Add accumulates another result, for directory loads.
func (r *SeedResult) Add(other *SeedResult) {
	r.ProjectsCreated += other.ProjectsCreated
	r.ProjectsUpdated += other.ProjectsUpdated
	r.EndpointsCreated += other.EndpointsCreated
	r.SettingsApplied = r.SettingsApplied || other.SettingsApplied
}

// Apply loads the collection into the store. Seeding is idempotent per
// project name: an existing project with the same name is updated in
// place and its endpoints are replaced with the declared set, so the
// seed file stays the source of truth for the projects it names.
func (c *Collection) Apply(ctx context.Context, st store.Store) (*SeedResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	res := &SeedResult{}
	if c.Settings != nil {
		if _, err := st.Settings().Update(ctx, c.Settings.patch()); err != nil {
			return nil, fmt.Errorf("apply settings: %w", err)
		}
		res.SettingsApplied = true
	}

	existing, err := st.Projects().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	byName := make(map[string]*stub.Project, len(existing))
	for _, p := range existing {
		byName[p.Name] = p
	}

	for _, sp := range c.Projects {
		proj := byName[sp.Name]
		if proj == nil {
			proj = &stub.Project{
				ID:          uuid.NewString(),
				Name:        sp.Name,
				Description: sp.Description,
				BasePath:    stub.NormalizeBasePath(sp.BasePath),
			}
			if err := st.Projects().Create(ctx, proj); err != nil {
				return nil, fmt.Errorf("create project %q: %w", sp.Name, err)
			}
			res.ProjectsCreated++
		} else {
			proj.Description = sp.Description
			proj.BasePath = stub.NormalizeBasePath(sp.BasePath)
			if err := st.Projects().Update(ctx, proj); err != nil {
				return nil, fmt.Errorf("update project %q: %w", sp.Name, err)
			}
			if _, err := st.Endpoints().DeleteByProject(ctx, proj.ID); err != nil {
				return nil, fmt.Errorf("reset endpoints of %q: %w", sp.Name, err)
			}
			res.ProjectsUpdated++
		}

		for _, se := range sp.Endpoints {
			ep, err := se.endpoint(proj.ID)
			if err != nil {
				return nil, fmt.Errorf("project %q: %w", sp.Name, err)
			}
			ep.ID = uuid.NewString()
			if err := st.Endpoints().Create(ctx, ep); err != nil {
				return nil, fmt.Errorf("project %q: create endpoint %s %s: %w", sp.Name, ep.Method, ep.Path, err)
			}
			res.EndpointsCreated++
		}
	}
	return res, nil
}
