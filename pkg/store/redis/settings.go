package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/getstubd/stubd/pkg/store"
	"github.com/getstubd/stubd/pkg/stub"
)

// settingsStore implements store.SettingsStore backed by a RedisStore.
type settingsStore struct {
	rs *RedisStore
}

func (s *settingsStore) Get(ctx context.Context) (*stub.Settings, error) {
	data, err := s.rs.client.Get(ctx, settingsKey).Result()
	if errors.Is(err, redis.Nil) {
		return stub.DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	var settings stub.Settings
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &settings, nil
}

func (s *settingsStore) Update(ctx context.Context, patch *stub.SettingsPatch) (*stub.Settings, error) {
	if s.rs.cfg.ReadOnly {
		return nil, store.ErrReadOnly
	}

	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	current.Apply(patch)

	data, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	if err := s.rs.client.Set(ctx, settingsKey, data, 0).Err(); err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return current, nil
}
