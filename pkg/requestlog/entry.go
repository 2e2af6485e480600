// Package requestlog records stub traffic for inspection via the
// management API. Entries live in a bounded in-memory buffer; the oldest
// entry is evicted when the buffer is full.
package requestlog

import "time"

// Entry captures one request served by the stub engine.
type Entry struct {
	// ID is a unique identifier for the log entry.
	ID string `json:"id"`

	// Timestamp is when the request was received.
	Timestamp time.Time `json:"timestamp"`

	// Method is the HTTP method.
	Method string `json:"method"`

	// Path is the request URL path.
	Path string `json:"path"`

	// QueryString is the raw query string.
	QueryString string `json:"queryString,omitempty"`

	// RemoteAddr is the client address.
	RemoteAddr string `json:"remoteAddr"`

	// ProjectID is the project whose base path claimed the request
	// (empty if no project matched).
	ProjectID string `json:"projectId,omitempty"`

	// EndpointID is the endpoint that served the request (empty if the
	// request fell through to the no-match response).
	EndpointID string `json:"endpointId,omitempty"`

	// ResponseStatus is the status code returned.
	ResponseStatus int `json:"responseStatus"`

	// DurationMs is the request processing time in milliseconds,
	// including any configured response delay.
	DurationMs int64 `json:"durationMs"`
}

// Filter defines criteria for querying logged requests.
type Filter struct {
	// ProjectID filters by matched project.
	ProjectID string

	// EndpointID filters by matched endpoint.
	EndpointID string

	// Method filters by HTTP method.
	Method string

	// Path filters by path prefix.
	Path string

	// StatusCode filters by response status code.
	StatusCode int

	// Limit is the maximum number of entries to return.
	Limit int

	// Offset is the number of entries to skip.
	Offset int
}
