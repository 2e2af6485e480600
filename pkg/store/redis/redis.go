// Package redis provides a Redis-backed implementation of the store
// interfaces. Records are stored as JSON values under stubd: prefixed
// keys, with list keys preserving creation order.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/getstubd/stubd/pkg/store"
)

const (
	projectKeyPrefix  = "stubd:project:"  // Project record: stubd:project:{id}
	endpointKeyPrefix = "stubd:endpoint:" // Endpoint record: stubd:endpoint:{id}
	projectOrderKey   = "stubd:projects"  // List of project IDs in creation order
	endpointOrderKey  = "stubd:endpoints" // List of endpoint IDs in creation order
	settingsKey       = "stubd:settings"  // Singleton settings record
)

// RedisStore implements store.Store on a Redis server.
type RedisStore struct {
	cfg    store.Config
	client *redis.Client
}

// New creates a new RedisStore with the given configuration. The
// connection is not established until Open is called.
func New(cfg store.Config) *RedisStore {
	return &RedisStore{cfg: cfg}
}

// Open connects to the Redis server and verifies the connection.
func (s *RedisStore) Open(ctx context.Context) error {
	addr := s.cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}
	s.client = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   s.cfg.RedisDB,
	})
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Client returns the underlying Redis client. Exposed for tests.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Projects returns the project store.
func (s *RedisStore) Projects() store.ProjectStore {
	return &projectStore{rs: s}
}

// Endpoints returns the endpoint store.
func (s *RedisStore) Endpoints() store.EndpointStore {
	return &endpointStore{rs: s}
}

// Settings returns the settings store.
func (s *RedisStore) Settings() store.SettingsStore {
	return &settingsStore{rs: s}
}

func projectKey(id string) string {
	return projectKeyPrefix + id
}

func endpointKey(id string) string {
	return endpointKeyPrefix + id
}
