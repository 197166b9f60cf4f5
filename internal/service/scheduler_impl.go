package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/compozy/m2release/internal/domain"
	"github.com/compozy/m2release/internal/repository"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// QueueScheduler schedules builds by appending them to a project build queue.
type QueueScheduler struct {
	queue  repository.BuildQueueRepository
	logger *zap.Logger
}

// NewQueueScheduler creates a scheduler backed by queue.
func NewQueueScheduler(queue repository.BuildQueueRepository, logger *zap.Logger) *QueueScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueScheduler{queue: queue, logger: logger}
}

// ScheduleBuild enqueues the build, retrying while the queue is locked.
func (s *QueueScheduler) ScheduleBuild(
	ctx context.Context,
	project string,
	quietPeriod int,
	cause domain.ReleaseCause,
	params []domain.ParameterValue,
	release *domain.ReleaseRequest,
) bool {
	build, err := domain.NewQueuedBuild(project, quietPeriod, cause, params, release)
	if err != nil {
		s.logger.Error("failed to create queued build", zap.String("project", project), zap.Error(err))
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, DefaultScheduleTimeout)
	defer cancel()
	if err := s.enqueueWithRetry(ctx, build); err != nil {
		s.logger.Error("failed to schedule build",
			zap.String("project", project),
			zap.String("build_id", build.ID),
			zap.Error(err),
		)
		return false
	}
	s.logger.Info("build scheduled",
		zap.String("project", project),
		zap.String("build_id", build.ID),
		zap.String("cause", cause.ShortDescription()),
		zap.Int("parameters", len(params)),
		zap.Bool("release", build.IsRelease()),
	)
	return true
}

func (s *QueueScheduler) enqueueWithRetry(ctx context.Context, build *domain.QueuedBuild) error {
	return s.withQueueRetry(ctx, build.Project, func(retryCtx context.Context) error {
		return s.queue.Enqueue(retryCtx, build)
	})
}

// withQueueRetry runs fn again with exponential backoff while the project
// queue is locked by another writer.
func (s *QueueScheduler) withQueueRetry(ctx context.Context, project string, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(DefaultRetryCount, retry.NewExponential(DefaultRetryDelay))
	return retry.Do(ctx, backoff, func(retryCtx context.Context) error {
		err := fn(retryCtx)
		if errors.Is(err, repository.ErrQueueLocked) {
			s.logger.Debug("queue locked, retrying", zap.String("project", project))
			return retry.RetryableError(err)
		}
		return err
	})
}

// LastRelease returns the most recently queued release build of project.
func (s *QueueScheduler) LastRelease(ctx context.Context, project string) (*domain.QueuedBuild, error) {
	var build *domain.QueuedBuild
	err := s.withQueueRetry(ctx, project, func(retryCtx context.Context) error {
		var err error
		build, err = s.queue.LatestRelease(retryCtx, project)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve last release of %s: %w", project, err)
	}
	return build, nil
}

// Builds lists every queued build of project, oldest first.
func (s *QueueScheduler) Builds(ctx context.Context, project string) ([]*domain.QueuedBuild, error) {
	var builds []*domain.QueuedBuild
	err := s.withQueueRetry(ctx, project, func(retryCtx context.Context) error {
		var err error
		builds, err = s.queue.List(retryCtx, project)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list builds of %s: %w", project, err)
	}
	return builds, nil
}
