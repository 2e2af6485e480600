// Package stub defines the core record types served by stubd: projects
// (API namespaces with a base path), endpoints (method + path + canned
// response), and the global settings singleton.
package stub

import (
	"encoding/json"
	"time"
)

// Methods lists the HTTP methods an endpoint may declare, in display order.
var Methods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS", "HEAD"}

// Project is a named namespace that owns a set of endpoints. Its BasePath is
// a literal path prefix (always starting with "/"), not a pattern. Deleting a
// project deletes every endpoint whose ProjectID references it.
type Project struct {
	// ID is a unique identifier, assigned at creation and immutable.
	ID string `json:"id"`

	// Name is a human-readable name for the project
	Name string `json:"name"`

	// Description is an optional longer description
	Description string `json:"description,omitempty"`

	// BasePath is the literal URL prefix all endpoint paths are relative to
	BasePath string `json:"basePath"`

	// CreatedAt is when the project was created
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the project was last modified
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// Endpoint is one stub rule: a method and path (relative to the owning
// project's base path) mapped to a canned response.
type Endpoint struct {
	// ID is a unique identifier, assigned at creation and immutable.
	ID string `json:"id"`

	// ProjectID references the owning project
	ProjectID string `json:"projectId"`

	// Path is matched by exact string equality against the request path
	// after the project's base path has been stripped
	Path string `json:"path"`

	// Method is one of Methods, stored uppercase and matched case-sensitively
	Method string `json:"method"`

	// Response describes what to send when this endpoint matches
	Response *ResponseSpec `json:"response"`

	// Enabled endpoints participate in resolution; disabled ones are skipped
	Enabled bool `json:"enabled"`

	// CreatedAt is when the endpoint was created
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the endpoint was last modified
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the endpoint, including its response.
func (e *Endpoint) Clone() *Endpoint {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Response = e.Response.Clone()
	return &cp
}

// ResponseSpec is the canned response an endpoint serves.
type ResponseSpec struct {
	// Status is the HTTP status code to send (100-599)
	Status int `json:"status"`

	// Headers are set on the response after the global default headers,
	// so an endpoint header wins over a same-named default
	Headers map[string]string `json:"headers,omitempty"`

	// Body is an arbitrary JSON value, emitted verbatim
	Body json.RawMessage `json:"body,omitempty"`

	// DelayMs delays completion of the response by this many milliseconds
	DelayMs int64 `json:"delay,omitempty"`
}

// Clone returns a deep copy of the response spec.
func (r *ResponseSpec) Clone() *ResponseSpec {
	if r == nil {
		return nil
	}
	cp := *r
	if r.Headers != nil {
		cp.Headers = make(map[string]string, len(r.Headers))
		for k, v := range r.Headers {
			cp.Headers[k] = v
		}
	}
	if r.Body != nil {
		cp.Body = make(json.RawMessage, len(r.Body))
		copy(cp.Body, r.Body)
	}
	return &cp
}

// Settings is the global singleton controlling CORS policy for stub traffic
// and the default headers applied to every stub response. It is lazily
// created with DefaultSettings on first read and never deleted.
type Settings struct {
	// CORSOrigins lists allowed origins, or "*" for any
	CORSOrigins []string `json:"corsOrigins"`

	// CORSHeaders lists header names allowed in preflight requests
	CORSHeaders []string `json:"corsHeaders"`

	// CORSMethods lists methods allowed in preflight requests
	CORSMethods []string `json:"corsMethods"`

	// DefaultHeaders are applied to every stub response before the
	// endpoint's own headers
	DefaultHeaders map[string]string `json:"defaultHeaders"`

	// AuthEnabled gates the management API bearer-token check
	AuthEnabled bool `json:"authEnabled"`
}

// DefaultSettings returns the settings used before any update is stored.
func DefaultSettings() *Settings {
	return &Settings{
		CORSOrigins:    []string{"*"},
		CORSHeaders:    []string{"Content-Type", "Authorization"},
		CORSMethods:    []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		DefaultHeaders: map[string]string{},
		AuthEnabled:    true,
	}
}

// Clone returns a deep copy of the settings.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	cp := *s
	cp.CORSOrigins = append([]string(nil), s.CORSOrigins...)
	cp.CORSHeaders = append([]string(nil), s.CORSHeaders...)
	cp.CORSMethods = append([]string(nil), s.CORSMethods...)
	if s.DefaultHeaders != nil {
		cp.DefaultHeaders = make(map[string]string, len(s.DefaultHeaders))
		for k, v := range s.DefaultHeaders {
			cp.DefaultHeaders[k] = v
		}
	}
	return &cp
}

// OriginAllowed reports whether the given request origin is allowed by the
// settings, either literally or via a "*" entry.
func (s *Settings) OriginAllowed(origin string) bool {
	for _, o := range s.CORSOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// SettingsPatch is a partial update applied over the stored settings.
// Nil fields keep their current value.
type SettingsPatch struct {
	CORSOrigins    *[]string          `json:"corsOrigins,omitempty"`
	CORSHeaders    *[]string          `json:"corsHeaders,omitempty"`
	CORSMethods    *[]string          `json:"corsMethods,omitempty"`
	DefaultHeaders *map[string]string `json:"defaultHeaders,omitempty"`
	AuthEnabled    *bool              `json:"authEnabled,omitempty"`
}

// Apply merges the patch into the settings, field by field.
func (s *Settings) Apply(patch *SettingsPatch) {
	if patch == nil {
		return
	}
	if patch.CORSOrigins != nil {
		s.CORSOrigins = append([]string(nil), *patch.CORSOrigins...)
	}
	if patch.CORSHeaders != nil {
		s.CORSHeaders = append([]string(nil), *patch.CORSHeaders...)
	}
	if patch.CORSMethods != nil {
		s.CORSMethods = append([]string(nil), *patch.CORSMethods...)
	}
	if patch.DefaultHeaders != nil {
		headers := make(map[string]string, len(*patch.DefaultHeaders))
		for k, v := range *patch.DefaultHeaders {
			headers[k] = v
		}
		s.DefaultHeaders = headers
	}
	if patch.AuthEnabled != nil {
		s.AuthEnabled = *patch.AuthEnabled
	}
}
