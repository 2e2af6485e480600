// Server configuration types and defaults.

package config

import (
	"fmt"
	"strings"

	"github.com/getstubd/stubd/pkg/store"
)

const (
	// DefaultPort is the port the combined listener binds when unset.
	DefaultPort = 4780

	// DefaultAdminPrefix is the path prefix the management API is
	// mounted under.
	DefaultAdminPrefix = "/_admin"

	// DefaultAdminUsername is the login name used when none is configured.
	DefaultAdminUsername = "admin"

	// DefaultTokenTTLSeconds is the session token lifetime.
	DefaultTokenTTLSeconds = 86400
)

// ServerConfiguration defines the stubd server runtime settings. A single
// listener serves both stub traffic and the management API; the latter is
// mounted under AdminPrefix.
type ServerConfiguration struct {
	// Port is the TCP port of the listener. 0 binds an ephemeral port.
	Port int `json:"port" yaml:"port"`

	// AdminPrefix is the path prefix the management API is mounted under.
	// Must start with "/"; a trailing "/" is stripped.
	AdminPrefix string `json:"adminPrefix,omitempty" yaml:"adminPrefix,omitempty"`

	// AdminUsername is the login name for the management API
	AdminUsername string `json:"adminUsername,omitempty" yaml:"adminUsername,omitempty"`

	// AdminPassword is the login password. Empty means a random one is
	// generated and logged at startup. Never serialized.
	AdminPassword string `json:"-" yaml:"-"`

	// AuthSecret signs session tokens. Changing it invalidates every
	// outstanding session. Never serialized.
	AuthSecret string `json:"-" yaml:"-"`

	// TokenTTLSeconds is the session token lifetime in seconds
	TokenTTLSeconds int `json:"tokenTtlSeconds,omitempty" yaml:"tokenTtlSeconds,omitempty"`

	// Store selects and configures the storage backend
	Store store.Config `json:"store" yaml:"store"`

	// CORS is the static CORS policy for the management API. Stub traffic
	// uses the settings singleton instead, read fresh per request.
	CORS *CORSConfig `json:"cors,omitempty" yaml:"cors,omitempty"`

	// ReadTimeout is the HTTP read timeout in seconds
	ReadTimeout int `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`

	// WriteTimeout is the HTTP write timeout in seconds
	WriteTimeout int `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`

	// MaxLogEntries is the maximum number of request log entries to retain
	MaxLogEntries int `json:"maxLogEntries,omitempty" yaml:"maxLogEntries,omitempty"`

	// LogLevel is the minimum log level (debug, info, warn, error)
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`

	// LogFormat selects the log output format (text or json)
	LogFormat string `json:"logFormat,omitempty" yaml:"logFormat,omitempty"`

	// SeedFile is a seed collection loaded into the store at startup
	SeedFile string `json:"seedFile,omitempty" yaml:"seedFile,omitempty"`

	// SeedDir is a directory of seed collections loaded at startup.
	// Scanned recursively for .yaml, .yml and .json files.
	SeedDir string `json:"seedDir,omitempty" yaml:"seedDir,omitempty"`
}

// DefaultServerConfiguration returns a ServerConfiguration with sensible
// defaults: file-backed storage, the standard port, and admin CORS open
// to any origin.
func DefaultServerConfiguration() *ServerConfiguration {
	return &ServerConfiguration{
		Port:            DefaultPort,
		AdminPrefix:     DefaultAdminPrefix,
		AdminUsername:   DefaultAdminUsername,
		TokenTTLSeconds: DefaultTokenTTLSeconds,
		Store:           store.DefaultConfig(),
		CORS:            DefaultCORSConfig(),
		ReadTimeout:     30,
		WriteTimeout:    30,
		MaxLogEntries:   1000,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Normalize fills zero-valued fields with defaults and canonicalizes the
// admin prefix. Port is left alone: 0 legitimately means ephemeral.
func (c *ServerConfiguration) Normalize() {
	if c.AdminPrefix == "" {
		c.AdminPrefix = DefaultAdminPrefix
	}
	c.AdminPrefix = "/" + strings.Trim(c.AdminPrefix, "/")
	if c.AdminUsername == "" {
		c.AdminUsername = DefaultAdminUsername
	}
	if c.TokenTTLSeconds <= 0 {
		c.TokenTTLSeconds = DefaultTokenTTLSeconds
	}
	if c.Store.Backend == "" {
		c.Store.Backend = store.BackendFile
	}
	if c.CORS == nil {
		c.CORS = DefaultCORSConfig()
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 30
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 30
	}
	if c.MaxLogEntries <= 0 {
		c.MaxLogEntries = 1000
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

// Validate checks the configuration for values Normalize cannot repair.
func (c *ServerConfiguration) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if !strings.HasPrefix(c.AdminPrefix, "/") || c.AdminPrefix == "/" {
		return fmt.Errorf("invalid admin prefix %q", c.AdminPrefix)
	}
	if !c.Store.Backend.Valid() {
		return fmt.Errorf("unknown storage backend %q", c.Store.Backend)
	}
	if c.SeedFile != "" && c.SeedDir != "" {
		return fmt.Errorf("seed file and seed directory are mutually exclusive")
	}
	return nil
}

// CORSConfig is the static CORS policy for the management API. It is
// fixed at startup and never rejects a request: an origin outside the
// allow list simply gets no CORS headers.
type CORSConfig struct {
	// AllowOrigins lists allowed origins. "*" allows any origin.
	AllowOrigins []string `json:"allowOrigins,omitempty" yaml:"allowOrigins,omitempty"`
	// AllowMethods lists methods advertised in preflight responses
	AllowMethods []string `json:"allowMethods,omitempty" yaml:"allowMethods,omitempty"`
	// AllowHeaders lists request headers advertised in preflight responses
	AllowHeaders []string `json:"allowHeaders,omitempty" yaml:"allowHeaders,omitempty"`
	// MaxAge is the preflight cache duration in seconds
	MaxAge int `json:"maxAge,omitempty" yaml:"maxAge,omitempty"`
}

// DefaultCORSConfig returns the management API CORS defaults.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:       86400,
	}
}

// IsWildcard reports whether the config allows all origins.
func (c *CORSConfig) IsWildcard() bool {
	if c == nil {
		return false
	}
	for _, origin := range c.AllowOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// GetAllowOriginValue returns the Access-Control-Allow-Origin value for
// the given request origin: the origin itself when literally listed, "*"
// when a wildcard entry exists, empty when neither. A literal listing
// wins over the wildcard so credentialed requests keep working.
func (c *CORSConfig) GetAllowOriginValue(requestOrigin string) string {
	if c == nil {
		return ""
	}
	if requestOrigin != "" {
		for _, allowed := range c.AllowOrigins {
			if allowed == requestOrigin {
				return requestOrigin
			}
		}
	}
	if c.IsWildcard() {
		return "*"
	}
	return ""
}
