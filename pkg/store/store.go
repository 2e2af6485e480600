// Package store defines the persistence port for stubd records.
//
// Backends implement the Store interface over different media:
//   - memory: process-local, no persistence (tests, --no-persist)
//   - file: a single JSON document in an XDG-style data directory
//   - redis: a remote key-value store
//
// The backend is selected once at process start via Config; nothing
// branches on it per request.
package store

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// Common errors
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidID     = errors.New("invalid id")
	ErrReadOnly      = errors.New("store is read-only")
)

// Backend represents a storage backend type.
type Backend string

const (
	// BackendMemory uses in-memory storage (no persistence)
	BackendMemory Backend = "memory"
	// BackendFile uses a JSON file for storage
	BackendFile Backend = "file"
	// BackendRedis uses a Redis server for storage
	BackendRedis Backend = "redis"
)

// Valid reports whether b names a known backend.
func (b Backend) Valid() bool {
	switch b {
	case BackendMemory, BackendFile, BackendRedis:
		return true
	}
	return false
}

// Config holds store configuration.
type Config struct {
	// Backend specifies the storage backend to use
	Backend Backend `json:"backend" yaml:"backend"`

	// DataDir is the base directory for file-backed storage
	// Defaults to XDG_DATA_HOME/stubd or ~/.local/share/stubd
	DataDir string `json:"dataDir,omitempty" yaml:"dataDir,omitempty"`

	// ConfigDir is the directory for configuration files
	// Defaults to XDG_CONFIG_HOME/stubd or ~/.config/stubd
	ConfigDir string `json:"configDir,omitempty" yaml:"configDir,omitempty"`

	// RedisAddr is the host:port of the Redis server (redis backend)
	RedisAddr string `json:"redisAddr,omitempty" yaml:"redisAddr,omitempty"`

	// RedisDB selects the Redis logical database (redis backend)
	RedisDB int `json:"redisDb,omitempty" yaml:"redisDb,omitempty"`

	// ReadOnly prevents any write operations
	ReadOnly bool `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		Backend:   BackendFile,
		DataDir:   DefaultDataDir(),
		ConfigDir: DefaultConfigDir(),
	}
}

// DefaultDataDir returns the default data directory following XDG spec.
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "stubd")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".stubd", "data")
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "stubd")
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			return filepath.Join(appData, "stubd")
		}
		return filepath.Join(home, "AppData", "Local", "stubd")
	}
	return filepath.Join(home, ".local", "share", "stubd")
}

// DefaultConfigDir returns the default config directory following XDG spec.
func DefaultConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "stubd")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".stubd", "config")
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Preferences", "stubd")
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "stubd")
		}
		return filepath.Join(home, "AppData", "Roaming", "stubd")
	}
	return filepath.Join(home, ".config", "stubd")
}
