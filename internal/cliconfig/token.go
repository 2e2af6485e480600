// Session token storage for the CLI.

package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ConfigDirName is the per-user directory stubd keeps CLI state in.
	ConfigDirName = "stubd"

	// TokenFileName is the session token file inside ConfigDirName.
	TokenFileName = "token"
)

// TokenPath returns the session token file path under the user config
// directory.
func TokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(dir, ConfigDirName, TokenFileName), nil
}

// SaveToken writes the session token with owner-only permissions.
func SaveToken(token string) error {
	path, err := TokenPath()
	if err != nil {
		return err
	}
	return saveTokenTo(path, token)
}

func saveTokenTo(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// LoadToken returns the saved session token, preferring the STUBD_TOKEN
// environment variable when set. An empty string means not logged in.
func LoadToken() (string, error) {
	if tok := os.Getenv(EnvToken); tok != "" {
		return tok, nil
	}
	path, err := TokenPath()
	if err != nil {
		return "", err
	}
	return loadTokenFrom(path)
}

func loadTokenFrom(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// DeleteToken removes the saved session token. A missing file is not an
// error.
func DeleteToken() error {
	path, err := TokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
