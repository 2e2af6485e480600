package cliconfig

import (
	"strconv"

	"github.com/getstubd/stubd/pkg/config"
	"github.com/getstubd/stubd/pkg/store"
)

// ConfigSource identifies where a config value originated.
const (
	SourceDefault = "default"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// CLIConfig collects the flag- and environment-facing settings of the
// stubd CLI. Server commands convert it into a config.ServerConfiguration;
// client commands use AdminURL and Token directly.
type CLIConfig struct {
	// Server settings
	Port          int    `json:"port"`
	AdminPrefix   string `json:"adminPrefix"`
	AdminUsername string `json:"adminUsername"`
	AdminPassword string `json:"-"`
	AuthSecret    string `json:"-"`
	Backend       string `json:"backend"`
	DataDir       string `json:"dataDir,omitempty"`
	RedisAddr     string `json:"redisAddr,omitempty"`
	RedisDB       int    `json:"redisDb,omitempty"`
	ReadTimeout   int    `json:"readTimeout"`
	WriteTimeout  int    `json:"writeTimeout"`
	MaxLogEntries int    `json:"maxLogEntries"`
	SeedFile      string `json:"seedFile,omitempty"`
	SeedDir       string `json:"seedDir,omitempty"`

	// Logging settings
	LogLevel  string `json:"logLevel"`
	LogFormat string `json:"logFormat"`

	// Client settings
	AdminURL string `json:"adminUrl"`
	Token    string `json:"-"`

	// Sources tracks where each value came from (for debugging)
	Sources map[string]string `json:"-"`
}

// DefaultAdminURL returns the management API base URL for a local server
// on the given port, including the admin prefix.
func DefaultAdminURL(port int) string {
	if port == 0 {
		port = config.DefaultPort
	}
	return "http://localhost:" + strconv.Itoa(port) + config.DefaultAdminPrefix
}

// NewDefault creates a CLIConfig with default values, all marked as such
// in Sources.
func NewDefault() *CLIConfig {
	cfg := &CLIConfig{
		Port:          config.DefaultPort,
		AdminPrefix:   config.DefaultAdminPrefix,
		AdminUsername: config.DefaultAdminUsername,
		Backend:       string(store.BackendFile),
		ReadTimeout:   30,
		WriteTimeout:  30,
		MaxLogEntries: 1000,
		LogLevel:      "info",
		LogFormat:     "text",
		Sources:       make(map[string]string),
	}
	cfg.AdminURL = DefaultAdminURL(cfg.Port)

	for _, key := range []string{
		"port", "adminPrefix", "adminUsername", "backend",
		"readTimeout", "writeTimeout", "maxLogEntries",
		"logLevel", "logFormat", "adminUrl",
	} {
		cfg.Sources[key] = SourceDefault
	}
	return cfg
}

// ServerConfig converts the CLI view into the server configuration,
// normalized and ready for validation.
func (c *CLIConfig) ServerConfig() *config.ServerConfiguration {
	cfg := &config.ServerConfiguration{
		Port:          c.Port,
		AdminPrefix:   c.AdminPrefix,
		AdminUsername: c.AdminUsername,
		AdminPassword: c.AdminPassword,
		AuthSecret:    c.AuthSecret,
		Store: store.Config{
			Backend:   store.Backend(c.Backend),
			DataDir:   c.DataDir,
			RedisAddr: c.RedisAddr,
			RedisDB:   c.RedisDB,
		},
		ReadTimeout:   c.ReadTimeout,
		WriteTimeout:  c.WriteTimeout,
		MaxLogEntries: c.MaxLogEntries,
		LogLevel:      c.LogLevel,
		LogFormat:     c.LogFormat,
		SeedFile:      c.SeedFile,
		SeedDir:       c.SeedDir,
	}
	cfg.Normalize()
	return cfg
}
