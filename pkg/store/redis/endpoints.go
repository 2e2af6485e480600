package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/getstubd/stubd/pkg/store"
	"github.com/getstubd/stubd/pkg/stub"
)

// endpointStore implements store.EndpointStore backed by a RedisStore.
type endpointStore struct {
	rs *RedisStore
}

func (e *endpointStore) List(ctx context.Context, filter *store.EndpointFilter) ([]*stub.Endpoint, error) {
	ids, err := e.rs.client.LRange(ctx, endpointOrderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list endpoints: %w", err)
	}
	if len(ids) == 0 {
		return []*stub.Endpoint{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = endpointKey(id)
	}
	values, err := e.rs.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load endpoints: %w", err)
	}

	out := make([]*stub.Endpoint, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var endpoint stub.Endpoint
		if err := json.Unmarshal([]byte(raw), &endpoint); err != nil {
			return nil, fmt.Errorf("decode endpoint: %w", err)
		}
		if filter.Matches(&endpoint) {
			out = append(out, &endpoint)
		}
	}
	return out, nil
}

func (e *endpointStore) Get(ctx context.Context, id string) (*stub.Endpoint, error) {
	data, err := e.rs.client.Get(ctx, endpointKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get endpoint: %w", err)
	}

	var endpoint stub.Endpoint
	if err := json.Unmarshal([]byte(data), &endpoint); err != nil {
		return nil, fmt.Errorf("decode endpoint: %w", err)
	}
	return &endpoint, nil
}

func (e *endpointStore) Create(ctx context.Context, endpoint *stub.Endpoint) error {
	if endpoint.ID == "" {
		return store.ErrInvalidID
	}
	if e.rs.cfg.ReadOnly {
		return store.ErrReadOnly
	}

	exists, err := e.rs.client.Exists(ctx, endpointKey(endpoint.ID)).Result()
	if err != nil {
		return fmt.Errorf("check endpoint: %w", err)
	}
	if exists > 0 {
		return store.ErrAlreadyExists
	}

	now := time.Now().UTC()
	if endpoint.CreatedAt.IsZero() {
		endpoint.CreatedAt = now
	}
	if endpoint.UpdatedAt.IsZero() {
		endpoint.UpdatedAt = now
	}

	data, err := json.Marshal(endpoint)
	if err != nil {
		return fmt.Errorf("encode endpoint: %w", err)
	}

	pipe := e.rs.client.TxPipeline()
	pipe.Set(ctx, endpointKey(endpoint.ID), data, 0)
	pipe.RPush(ctx, endpointOrderKey, endpoint.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create endpoint: %w", err)
	}
	return nil
}

func (e *endpointStore) Update(ctx context.Context, endpoint *stub.Endpoint) error {
	if endpoint.ID == "" {
		return store.ErrInvalidID
	}
	if e.rs.cfg.ReadOnly {
		return store.ErrReadOnly
	}

	exists, err := e.rs.client.Exists(ctx, endpointKey(endpoint.ID)).Result()
	if err != nil {
		return fmt.Errorf("check endpoint: %w", err)
	}
	if exists == 0 {
		return store.ErrNotFound
	}

	endpoint.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(endpoint)
	if err != nil {
		return fmt.Errorf("encode endpoint: %w", err)
	}
	if err := e.rs.client.Set(ctx, endpointKey(endpoint.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("update endpoint: %w", err)
	}
	return nil
}

func (e *endpointStore) Delete(ctx context.Context, id string) error {
	if e.rs.cfg.ReadOnly {
		return store.ErrReadOnly
	}

	exists, err := e.rs.client.Exists(ctx, endpointKey(id)).Result()
	if err != nil {
		return fmt.Errorf("check endpoint: %w", err)
	}
	if exists == 0 {
		return store.ErrNotFound
	}

	pipe := e.rs.client.TxPipeline()
	pipe.Del(ctx, endpointKey(id))
	pipe.LRem(ctx, endpointOrderKey, 0, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete endpoint: %w", err)
	}
	return nil
}

func (e *endpointStore) DeleteByProject(ctx context.Context, projectID string) (int, error) {
	if e.rs.cfg.ReadOnly {
		return 0, store.ErrReadOnly
	}

	endpoints, err := e.List(ctx, &store.EndpointFilter{ProjectID: projectID})
	if err != nil {
		return 0, err
	}
	if len(endpoints) == 0 {
		return 0, nil
	}

	pipe := e.rs.client.TxPipeline()
	for _, ep := range endpoints {
		pipe.Del(ctx, endpointKey(ep.ID))
		pipe.LRem(ctx, endpointOrderKey, 0, ep.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("delete endpoints: %w", err)
	}
	return len(endpoints), nil
}
