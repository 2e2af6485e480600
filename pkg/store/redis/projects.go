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

// projectStore implements store.ProjectStore backed by a RedisStore.
type projectStore struct {
	rs *RedisStore
}

func (p *projectStore) List(ctx context.Context) ([]*stub.Project, error) {
	ids, err := p.rs.client.LRange(ctx, projectOrderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if len(ids) == 0 {
		return []*stub.Project{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = projectKey(id)
	}
	values, err := p.rs.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}

	out := make([]*stub.Project, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // record removed since the order list was read
		}
		var project stub.Project
		if err := json.Unmarshal([]byte(raw), &project); err != nil {
			return nil, fmt.Errorf("decode project: %w", err)
		}
		out = append(out, &project)
	}
	return out, nil
}

func (p *projectStore) Get(ctx context.Context, id string) (*stub.Project, error) {
	data, err := p.rs.client.Get(ctx, projectKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	var project stub.Project
	if err := json.Unmarshal([]byte(data), &project); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	return &project, nil
}

func (p *projectStore) Create(ctx context.Context, project *stub.Project) error {
	if project.ID == "" {
		return store.ErrInvalidID
	}
	if p.rs.cfg.ReadOnly {
		return store.ErrReadOnly
	}

	exists, err := p.rs.client.Exists(ctx, projectKey(project.ID)).Result()
	if err != nil {
		return fmt.Errorf("check project: %w", err)
	}
	if exists > 0 {
		return store.ErrAlreadyExists
	}

	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	if project.UpdatedAt.IsZero() {
		project.UpdatedAt = now
	}

	data, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}

	pipe := p.rs.client.TxPipeline()
	pipe.Set(ctx, projectKey(project.ID), data, 0)
	pipe.RPush(ctx, projectOrderKey, project.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (p *projectStore) Update(ctx context.Context, project *stub.Project) error {
	if project.ID == "" {
		return store.ErrInvalidID
	}
	if p.rs.cfg.ReadOnly {
		return store.ErrReadOnly
	}

	exists, err := p.rs.client.Exists(ctx, projectKey(project.ID)).Result()
	if err != nil {
		return fmt.Errorf("check project: %w", err)
	}
	if exists == 0 {
		return store.ErrNotFound
	}

	project.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	if err := p.rs.client.Set(ctx, projectKey(project.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

func (p *projectStore) Delete(ctx context.Context, id string) error {
	if p.rs.cfg.ReadOnly {
		return store.ErrReadOnly
	}

	exists, err := p.rs.client.Exists(ctx, projectKey(id)).Result()
	if err != nil {
		return fmt.Errorf("check project: %w", err)
	}
	if exists == 0 {
		return store.ErrNotFound
	}

	// Cascade: collect the project's endpoints before deleting anything.
	endpoints, err := (&endpointStore{rs: p.rs}).List(ctx, &store.EndpointFilter{ProjectID: id})
	if err != nil {
		return err
	}

	pipe := p.rs.client.TxPipeline()
	pipe.Del(ctx, projectKey(id))
	pipe.LRem(ctx, projectOrderKey, 0, id)
	for _, ep := range endpoints {
		pipe.Del(ctx, endpointKey(ep.ID))
		pipe.LRem(ctx, endpointOrderKey, 0, ep.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}
