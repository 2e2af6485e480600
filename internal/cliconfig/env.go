package cliconfig

import (
	"os"
	"strconv"
)

// Environment variable names
const (
	EnvPort          = "STUBD_PORT"
	EnvAdminUsername = "STUBD_ADMIN_USERNAME"
	EnvAdminPassword = "STUBD_ADMIN_PASSWORD"
	EnvAuthSecret    = "STUBD_AUTH_SECRET"
	EnvBackend       = "STUBD_BACKEND"
	EnvDataDir       = "STUBD_DATA_DIR"
	EnvRedisAddr     = "STUBD_REDIS_ADDR"
	EnvRedisDB       = "STUBD_REDIS_DB"
	EnvAdminURL      = "STUBD_ADMIN_URL"
	EnvToken         = "STUBD_TOKEN"
	EnvLogLevel      = "STUBD_LOG_LEVEL"
	EnvLogFormat     = "STUBD_LOG_FORMAT"
	EnvReadTimeout   = "STUBD_READ_TIMEOUT"
	EnvWriteTimeout  = "STUBD_WRITE_TIMEOUT"
	EnvMaxLogEntries = "STUBD_MAX_LOG_ENTRIES"
)

// LoadEnvConfig applies environment variables to the configuration.
// Only values present in the environment are set; unparseable numbers
// are ignored rather than fatal.
func LoadEnvConfig(cfg *CLIConfig) {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	// STUBD_PORT
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
			cfg.Sources["port"] = SourceEnv
		}
	}

	// STUBD_ADMIN_USERNAME
	if v := os.Getenv(EnvAdminUsername); v != "" {
		cfg.AdminUsername = v
		cfg.Sources["adminUsername"] = SourceEnv
	}

	// STUBD_ADMIN_PASSWORD
	if v := os.Getenv(EnvAdminPassword); v != "" {
		cfg.AdminPassword = v
		cfg.Sources["adminPassword"] = SourceEnv
	}

	// STUBD_AUTH_SECRET
	if v := os.Getenv(EnvAuthSecret); v != "" {
		cfg.AuthSecret = v
		cfg.Sources["authSecret"] = SourceEnv
	}

	// STUBD_BACKEND
	if v := os.Getenv(EnvBackend); v != "" {
		cfg.Backend = v
		cfg.Sources["backend"] = SourceEnv
	}

	// STUBD_DATA_DIR
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
		cfg.Sources["dataDir"] = SourceEnv
	}

	// STUBD_REDIS_ADDR
	if v := os.Getenv(EnvRedisAddr); v != "" {
		cfg.RedisAddr = v
		cfg.Sources["redisAddr"] = SourceEnv
	}

	// STUBD_REDIS_DB
	if v := os.Getenv(EnvRedisDB); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.RedisDB = db
			cfg.Sources["redisDb"] = SourceEnv
		}
	}

	// STUBD_ADMIN_URL
	if v := os.Getenv(EnvAdminURL); v != "" {
		cfg.AdminURL = v
		cfg.Sources["adminUrl"] = SourceEnv
	}

	// STUBD_LOG_LEVEL
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
		cfg.Sources["logLevel"] = SourceEnv
	}

	// STUBD_LOG_FORMAT
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
		cfg.Sources["logFormat"] = SourceEnv
	}

	// STUBD_READ_TIMEOUT
	if v := os.Getenv(EnvReadTimeout); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			cfg.ReadTimeout = timeout
			cfg.Sources["readTimeout"] = SourceEnv
		}
	}

	// STUBD_WRITE_TIMEOUT
	if v := os.Getenv(EnvWriteTimeout); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			cfg.WriteTimeout = timeout
			cfg.Sources["writeTimeout"] = SourceEnv
		}
	}

	// STUBD_MAX_LOG_ENTRIES
	if v := os.Getenv(EnvMaxLogEntries); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxLogEntries = n
			cfg.Sources["maxLogEntries"] = SourceEnv
		}
	}
}

// AdminURLFromEnv returns the admin URL override, or empty when unset.
func AdminURLFromEnv() string {
	return os.Getenv(EnvAdminURL)
}
