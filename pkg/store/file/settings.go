package file

import (
	"context"

	"github.com/getstubd/stubd/pkg/store"
	"github.com/getstubd/stubd/pkg/stub"
)

// settingsStore implements store.SettingsStore backed by a FileStore.
type settingsStore struct {
	fs *FileStore
}

func (s *settingsStore) Get(ctx context.Context) (*stub.Settings, error) {
	s.fs.mu.RLock()
	defer s.fs.mu.RUnlock()

	if s.fs.data.Settings == nil {
		return stub.DefaultSettings(), nil
	}
	return s.fs.data.Settings.Clone(), nil
}

func (s *settingsStore) Update(ctx context.Context, patch *stub.SettingsPatch) (*stub.Settings, error) {
	s.fs.mu.Lock()
	defer s.fs.mu.Unlock()

	if s.fs.cfg.ReadOnly {
		return nil, store.ErrReadOnly
	}

	current := s.fs.data.Settings
	if current == nil {
		current = stub.DefaultSettings()
	}
	current.Apply(patch)
	s.fs.data.Settings = current
	s.fs.markDirty()
	return current.Clone(), nil
}
