// Package cache keeps recently read project snapshots in an in-process
// ristretto cache in front of the record store.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/rpggio/project365/internal/domain/project"
)

// Projects decorates a project.Repository with a read-through snapshot cache.
// Writes go to the wrapped repository first and then refresh the cache.
type Projects struct {
	next   project.Repository
	c      *ristretto.Cache[string, []byte]
	ttl    time.Duration
	logger *slog.Logger

	// fill orders cache misses against writes so a slow reader cannot
	// re-insert a snapshot older than the last write.
	fill sync.Mutex
}

// NewProjects creates the cache. maxCostBytes bounds the total size of the
// encoded snapshots held.
func NewProjects(next project.Repository, maxCostBytes int64, ttl time.Duration, logger *slog.Logger) (*Projects, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: max(maxCostBytes/100*10, 1000), // ~10x expected items
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating snapshot cache: %w", err)
	}
	return &Projects{next: next, c: c, ttl: ttl, logger: logger}, nil
}

func (p *Projects) Create(ctx context.Context, proj *project.Project) error {
	p.fill.Lock()
	defer p.fill.Unlock()
	if err := p.next.Create(ctx, proj); err != nil {
		return err
	}
	p.store(proj)
	return nil
}

// Get serves from the cache, falling through to the wrapped repository.
func (p *Projects) Get(ctx context.Context, id string) (*project.Project, error) {
	if proj, ok := p.lookup(id); ok {
		return proj, nil
	}

	p.fill.Lock()
	defer p.fill.Unlock()
	if proj, ok := p.lookup(id); ok {
		return proj, nil
	}
	proj, err := p.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.store(proj)
	return proj, nil
}

// List is not cached.
func (p *Projects) List(ctx context.Context) ([]project.Project, error) {
	return p.next.List(ctx)
}

func (p *Projects) Save(ctx context.Context, proj *project.Project) error {
	p.fill.Lock()
	defer p.fill.Unlock()
	if err := p.next.Save(ctx, proj); err != nil {
		p.evict(proj.ID)
		return err
	}
	p.store(proj)
	return nil
}

func (p *Projects) Delete(ctx context.Context, id string) error {
	p.fill.Lock()
	defer p.fill.Unlock()
	p.evict(id)
	return p.next.Delete(ctx, id)
}

// Close releases the cache's background goroutines.
func (p *Projects) Close() {
	p.c.Close()
}

func (p *Projects) lookup(id string) (*project.Project, bool) {
	data, ok := p.c.Get(key(id))
	if !ok {
		return nil, false
	}
	var proj project.Project
	if err := json.Unmarshal(data, &proj); err != nil {
		p.logger.Warn("dropping undecodable cached snapshot", "project_id", id, "error", err)
		p.evict(id)
		return nil, false
	}
	return &proj, true
}

func (p *Projects) store(proj *project.Project) {
	data, err := json.Marshal(proj)
	if err != nil {
		p.logger.Warn("snapshot not cached", "project_id", proj.ID, "error", err)
		p.evict(proj.ID)
		return
	}
	if !p.c.SetWithTTL(key(proj.ID), data, int64(len(data)), p.ttl) {
		p.logger.Debug("snapshot rejected by cache", "project_id", proj.ID)
	}
	p.c.Wait()
}

func (p *Projects) evict(id string) {
	p.c.Del(key(id))
	p.c.Wait()
}

func key(id string) string {
	return "project:" + id
}
