package project_test

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rpggio/project365/internal/domain/project"
	"github.com/rpggio/project365/internal/repository"
)

// memRepo is an in-memory project.Repository.
type memRepo struct {
	mu       sync.Mutex
	projects map[string]*project.Project
	saves    int
}

func newMemRepo() *memRepo {
	return &memRepo{projects: map[string]*project.Project{}}
}

func (r *memRepo) Create(_ context.Context, proj *project.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[proj.ID]; ok {
		return repository.ErrAlreadyExists
	}
	r.projects[proj.ID] = proj.Clone()
	return nil
}

func (r *memRepo) Get(_ context.Context, id string) (*project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *memRepo) List(_ context.Context) ([]project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]project.Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, *p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) Save(_ context.Context, proj *project.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[proj.ID]; !ok {
		return repository.ErrNotFound
	}
	r.projects[proj.ID] = proj.Clone()
	r.saves++
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.projects, id)
	return nil
}

func (r *memRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// sequence returns an id source yielding prefix1, prefix2, ...
func sequence(prefix string) func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}
