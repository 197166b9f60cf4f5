package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/compozy/m2release/internal/domain"
)

// ErrProjectNotFound is returned for unknown project names.
var ErrProjectNotFound = errors.New("project not found")

// ProjectRepository provides read-only access to configured projects.
type ProjectRepository interface {
	Get(ctx context.Context, name string) (*domain.Project, error)
	List(ctx context.Context) ([]string, error)
}

// staticProjectRepository serves projects loaded once from configuration.
type staticProjectRepository struct {
	projects map[string]domain.Project
}

// NewStaticProjectRepository indexes projects by name. Duplicate names are rejected.
func NewStaticProjectRepository(projects []domain.Project) (ProjectRepository, error) {
	index := make(map[string]domain.Project, len(projects))
	for _, p := range projects {
		if p.Name == "" {
			return nil, fmt.Errorf("project without name")
		}
		if _, dup := index[p.Name]; dup {
			return nil, fmt.Errorf("duplicate project %q", p.Name)
		}
		p.ApplyDefaults()
		index[p.Name] = p
	}
	return &staticProjectRepository{projects: index}, nil
}

// Get returns a copy of the named project.
func (r *staticProjectRepository) Get(_ context.Context, name string) (*domain.Project, error) {
	p, ok := r.projects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, name)
	}
	if p.RootModule != nil {
		module := *p.RootModule
		p.RootModule = &module
	}
	p.ParameterDefinitions = append([]domain.ParameterDefinition(nil), p.ParameterDefinitions...)
	p.Release.Releasers = append([]string(nil), p.Release.Releasers...)
	return &p, nil
}

// List returns the configured project names in sorted order.
func (r *staticProjectRepository) List(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(r.projects))
	for name := range r.projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
