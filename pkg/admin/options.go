// Option functions for configuring the API.

package admin

import "github.com/getstubd/stubd/pkg/requestlog"

// Option configures an API.
type Option func(*API)

// WithStats wires the live server counters reported by the stats
// endpoint. Without it the API falls back to its own start time and a
// zero request count.
func WithStats(s StatsSource) Option {
	return func(a *API) {
		a.stats = s
	}
}

// WithRequestLog exposes the engine's request history on the requests
// endpoints. Without it the history reads as empty.
func WithRequestLog(l *requestlog.Log) Option {
	return func(a *API) {
		a.requests = l
	}
}
