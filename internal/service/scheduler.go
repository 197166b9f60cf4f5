package service

import (
	"context"

	"github.com/compozy/m2release/internal/domain"
)

// Scheduler accepts parameterized builds for a project.
type Scheduler interface {
	// ScheduleBuild queues a build and reports whether it was accepted.
	ScheduleBuild(
		ctx context.Context,
		project string,
		quietPeriod int,
		cause domain.ReleaseCause,
		params []domain.ParameterValue,
		release *domain.ReleaseRequest,
	) bool
}

// BuildHistory resolves previously scheduled builds.
type BuildHistory interface {
	LastRelease(ctx context.Context, project string) (*domain.QueuedBuild, error)
	Builds(ctx context.Context, project string) ([]*domain.QueuedBuild, error)
}
