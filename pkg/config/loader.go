// Seed file loading: format detection, parsing, and glob expansion.

package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/getstubd/stubd/pkg/store"
)

// Common errors for seed file loading.
var (
	ErrFileNotFound     = errors.New("seed file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrEmptyFile        = errors.New("seed file is empty")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
)

// LoadFromFile reads a seed Collection from a JSON or YAML file. The
// format is detected from the file extension (.yaml and .yml parse as
// YAML, anything else as JSON).
func LoadFromFile(path string) (*Collection, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("stat seed file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		return ParseYAML(data)
	}
	return ParseJSON(data)
}

// ParseJSON parses JSON bytes into a validated Collection.
func ParseJSON(data []byte) (*Collection, error) {
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}
	var col Collection
	if err := json.Unmarshal(data, &col); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if err := col.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &col, nil
}

// ParseYAML parses YAML bytes into a validated Collection.
func ParseYAML(data []byte) (*Collection, error) {
	var col Collection
	if err := yaml.Unmarshal(data, &col); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if err := col.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &col, nil
}

// ExpandGlob returns the files matching the pattern, sorted for
// deterministic load order. Patterns containing "**" match recursively.
func ExpandGlob(pattern string) ([]string, error) {
	var matches []string
	var err error
	if strings.Contains(pattern, "**") {
		matches, err = doublestar.FilepathGlob(pattern)
	} else {
		matches, err = filepath.Glob(pattern)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// seedFilePatterns are the recursive patterns LoadFromDir scans for.
var seedFilePatterns = []string{"**/*.yaml", "**/*.yml", "**/*.json"}

// LoadFromDir loads every seed file under dir, recursively, in sorted
// path order. Returns the paths alongside the collections so callers can
// report which file a collection came from.
func LoadFromDir(dir string) ([]string, []*Collection, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrFileNotFound, dir)
		}
		return nil, nil, fmt.Errorf("stat seed directory: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("path is a file, not a directory: %s", dir)
	}

	var files []string
	for _, pattern := range seedFilePatterns {
		matches, err := ExpandGlob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	collections := make([]*Collection, 0, len(files))
	for _, path := range files {
		col, err := LoadFromFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		collections = append(collections, col)
	}
	return files, collections, nil
}

// Seed applies the configured seed inputs to the store and returns the
// accumulated result. A nil result with nil error means nothing was
// configured to load.
func (c *ServerConfiguration) Seed(ctx context.Context, st store.Store) (*SeedResult, error) {
	switch {
	case c.SeedFile != "":
		col, err := LoadFromFile(c.SeedFile)
		if err != nil {
			return nil, err
		}
		return col.Apply(ctx, st)
	case c.SeedDir != "":
		paths, collections, err := LoadFromDir(c.SeedDir)
		if err != nil {
			return nil, err
		}
		total := &SeedResult{}
		for i, col := range collections {
			res, err := col.Apply(ctx, st)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", paths[i], err)
			}
			total.Add(res)
		}
		return total, nil
	}
	return nil, nil
}
