package file

import (
	"context"
	"time"

	"github.com/getstubd/stubd/pkg/store"
	"github.com/getstubd/stubd/pkg/stub"
)

// projectStore implements store.ProjectStore backed by a FileStore.
type projectStore struct {
	fs *FileStore
}

func (p *projectStore) List(ctx context.Context) ([]*stub.Project, error) {
	p.fs.mu.RLock()
	defer p.fs.mu.RUnlock()

	out := make([]*stub.Project, 0, len(p.fs.data.Projects))
	for _, proj := range p.fs.data.Projects {
		out = append(out, proj.Clone())
	}
	return out, nil
}

func (p *projectStore) Get(ctx context.Context, id string) (*stub.Project, error) {
	p.fs.mu.RLock()
	defer p.fs.mu.RUnlock()

	for _, proj := range p.fs.data.Projects {
		if proj.ID == id {
			return proj.Clone(), nil
		}
	}
	return nil, store.ErrNotFound
}

func (p *projectStore) Create(ctx context.Context, project *stub.Project) error {
	if project.ID == "" {
		return store.ErrInvalidID
	}

	p.fs.mu.Lock()
	defer p.fs.mu.Unlock()

	if p.fs.cfg.ReadOnly {
		return store.ErrReadOnly
	}
	for _, existing := range p.fs.data.Projects {
		if existing.ID == project.ID {
			return store.ErrAlreadyExists
		}
	}

	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	if project.UpdatedAt.IsZero() {
		project.UpdatedAt = now
	}

	p.fs.data.Projects = append(p.fs.data.Projects, project.Clone())
	p.fs.markDirty()
	return nil
}

func (p *projectStore) Update(ctx context.Context, project *stub.Project) error {
	if project.ID == "" {
		return store.ErrInvalidID
	}

	p.fs.mu.Lock()
	defer p.fs.mu.Unlock()

	if p.fs.cfg.ReadOnly {
		return store.ErrReadOnly
	}
	for i, existing := range p.fs.data.Projects {
		if existing.ID == project.ID {
			project.UpdatedAt = time.Now().UTC()
			p.fs.data.Projects[i] = project.Clone()
			p.fs.markDirty()
			return nil
		}
	}
	return store.ErrNotFound
}

func (p *projectStore) Delete(ctx context.Context, id string) error {
	p.fs.mu.Lock()
	defer p.fs.mu.Unlock()

	if p.fs.cfg.ReadOnly {
		return store.ErrReadOnly
	}
	for i, existing := range p.fs.data.Projects {
		if existing.ID == id {
			p.fs.data.Projects = append(p.fs.data.Projects[:i], p.fs.data.Projects[i+1:]...)
			// Cascade: remove all endpoints belonging to the project.
			p.fs.deleteEndpointsLocked(id)
			p.fs.markDirty()
			return nil
		}
	}
	return store.ErrNotFound
}
