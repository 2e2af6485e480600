// Package file provides a file-based implementation of the store interfaces.
// All records are kept in a single JSON document in the data directory.
package file

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getstubd/stubd/pkg/store"
	"github.com/getstubd/stubd/pkg/stub"
)

// Current data format version for migration support
const dataVersion = 1

// dataFileName is the document all records are stored in.
const dataFileName = "data.json"

// FileStore implements store.Store using a JSON file.
type FileStore struct {
	cfg          store.Config
	mu           sync.RWMutex
	data         *storeData
	dirty        atomic.Bool
	saving       atomic.Bool
	autoSave     bool
	saveDebounce time.Duration
	saveCh       chan struct{}
	closeCh      chan struct{}
	closeOnce    sync.Once
	closedCh     chan struct{} // signals when saveLoop has exited
	log          *slog.Logger
}

// storeData holds all persisted records.
type storeData struct {
	Version   int              `json:"version"`
	Projects  []*stub.Project  `json:"projects,omitempty"`
	Endpoints []*stub.Endpoint `json:"endpoints,omitempty"`
	Settings  *stub.Settings   `json:"settings,omitempty"`
}

// New creates a new FileStore with the given configuration.
func New(cfg store.Config) *FileStore {
	if cfg.DataDir == "" {
		cfg.DataDir = store.DefaultDataDir()
	}
	fs := &FileStore{
		cfg:          cfg,
		data:         &storeData{Version: dataVersion},
		autoSave:     true,
		saveDebounce: 500 * time.Millisecond,
		saveCh:       make(chan struct{}, 1),
		closeCh:      make(chan struct{}),
		closedCh:     make(chan struct{}),
		log:          slog.Default(),
	}
	// Start debounced save goroutine
	go fs.saveLoop()
	return fs
}

// SetLogger replaces the logger used for background save errors.
func (s *FileStore) SetLogger(log *slog.Logger) {
	if log != nil {
		s.log = log
	}
}

// saveLoop handles debounced saving to prevent excessive disk writes.
func (s *FileStore) saveLoop() {
	defer close(s.closedCh)
	var timer *time.Timer
	for {
		select {
		case <-s.saveCh:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(s.saveDebounce, func() {
				if s.dirty.Load() && !s.saving.Load() {
					if err := s.doSave(); err != nil {
						s.log.Error("failed to save store data", "error", err)
					}
				}
			})
		case <-s.closeCh:
			if timer != nil {
				timer.Stop()
			}
			// Final save on close
			if s.dirty.Load() {
				if err := s.doSave(); err != nil {
					s.log.Error("failed to save store data on close", "error", err)
				}
			}
			return
		}
	}
}

// Open initializes the store and loads data from disk.
func (s *FileStore) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.cfg.DataDir, 0700); err != nil {
		return err
	}

	dataFile := filepath.Join(s.cfg.DataDir, dataFileName)
	data, err := os.ReadFile(dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			// No data file yet, start fresh
			s.data = &storeData{Version: dataVersion}
			return nil
		}
		return err
	}

	var stored storeData
	if err := json.Unmarshal(data, &stored); err != nil {
		return err
	}

	s.data = &stored
	s.dirty.Store(false)
	return nil
}

// Close saves any pending changes and closes the store. Safe to call multiple times.
func (s *FileStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.closeCh)
	})
	// Wait for saveLoop to complete its final save and exit
	<-s.closedCh
	return nil
}

// doSave performs the actual save operation with an atomic write.
func (s *FileStore) doSave() error {
	if !s.saving.CompareAndSwap(false, true) {
		return nil // Already saving
	}
	defer s.saving.Store(false)

	s.mu.RLock()
	if s.cfg.ReadOnly {
		s.mu.RUnlock()
		return store.ErrReadOnly
	}

	s.data.Version = dataVersion
	data, err := json.MarshalIndent(s.data, "", "  ")
	s.mu.RUnlock()

	if err != nil {
		return err
	}

	// Atomic write: write to temp file, then rename
	dataFile := filepath.Join(s.cfg.DataDir, dataFileName)
	tmpFile := dataFile + ".tmp"

	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return err
	}

	if err := os.Rename(tmpFile, dataFile); err != nil {
		_ = os.Remove(tmpFile)
		return err
	}

	s.dirty.Store(false)
	return nil
}

// markDirty marks data as needing to be saved (thread-safe).
func (s *FileStore) markDirty() {
	s.dirty.Store(true)
	if s.autoSave {
		// Non-blocking send to trigger save
		select {
		case s.saveCh <- struct{}{}:
		default:
			// Channel full, save already pending
		}
	}
}

// ForceSave immediately saves data to disk.
func (s *FileStore) ForceSave() error {
	s.dirty.Store(true)
	return s.doSave()
}

// DataDir returns the data directory path.
func (s *FileStore) DataDir() string {
	return s.cfg.DataDir
}

// Projects returns the project store.
func (s *FileStore) Projects() store.ProjectStore {
	return &projectStore{fs: s}
}

// Endpoints returns the endpoint store.
func (s *FileStore) Endpoints() store.EndpointStore {
	return &endpointStore{fs: s}
}

// Settings returns the settings store.
func (s *FileStore) Settings() store.SettingsStore {
	return &settingsStore{fs: s}
}
