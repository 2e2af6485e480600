package admin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/getstubd/stubd/pkg/auth"
	"github.com/getstubd/stubd/pkg/config"
	"github.com/getstubd/stubd/pkg/logging"
	"github.com/getstubd/stubd/pkg/portability"
	"github.com/getstubd/stubd/pkg/requestlog"
	"github.com/getstubd/stubd/pkg/store"
	"github.com/getstubd/stubd/pkg/store/memory"
)

// StatsSource reports live server counters for the stats endpoint.
// *engine.Server implements it.
type StatsSource interface {
	Uptime() int
	RequestCount() int64
	IsRunning() bool
}

// API is the management API. It holds no listener of its own: Handler
// returns the routed surface and the engine server mounts it.
type API struct {
	cfg      *config.ServerConfiguration
	cors     *config.CORSConfig
	store    store.Store
	tokens   *auth.Service
	creds    auth.Credentials
	tokenTTL time.Duration
	requests *requestlog.Log
	stats    StatsSource
	importer *portability.OpenAPIImporter
	start    time.Time
	log      *slog.Logger
}

// NewAPI creates the management API over the given store.
func NewAPI(cfg *config.ServerConfiguration, st store.Store, opts ...Option) *API {
	if cfg == nil {
		cfg = config.DefaultServerConfiguration()
	}
	ttl := cfg.TokenTTLSeconds
	if ttl <= 0 {
		ttl = config.DefaultTokenTTLSeconds
	}

	a := &API{
		cfg:      cfg,
		cors:     cfg.CORS,
		store:    st,
		tokens:   auth.NewService(cfg.AuthSecret),
		creds:    auth.Credentials{Username: cfg.AdminUsername, Password: cfg.AdminPassword},
		tokenTTL: time.Duration(ttl) * time.Second,
		importer: &portability.OpenAPIImporter{},
		start:    time.Now(),
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.store == nil {
		a.store = memory.New()
	}
	if a.cors == nil {
		a.cors = config.DefaultCORSConfig()
	}
	return a
}

// Handler returns the routed API with the middleware chain applied.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	a.registerRoutes(mux)
	return a.withMiddleware(mux)
}

// SetLogger sets the structured logger. The default is a no-op logger.
func (a *API) SetLogger(log *slog.Logger) {
	if log != nil {
		a.log = log
	}
}

// Uptime returns seconds since the API was created. The stats endpoint
// prefers the engine's own counter when one is wired.
func (a *API) Uptime() int {
	return int(time.Since(a.start).Seconds())
}
