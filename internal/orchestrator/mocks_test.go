package orchestrator

import (
	"context"

	"github.com/compozy/m2release/internal/domain"
	"github.com/stretchr/testify/mock"
)

type mockScheduler struct{ mock.Mock }

func (m *mockScheduler) ScheduleBuild(
	ctx context.Context,
	project string,
	quietPeriod int,
	cause domain.ReleaseCause,
	params []domain.ParameterValue,
	release *domain.ReleaseRequest,
) bool {
	args := m.Called(ctx, project, quietPeriod, cause, params, release)
	return args.Bool(0)
}

type mockBuildHistory struct{ mock.Mock }

func (m *mockBuildHistory) LastRelease(ctx context.Context, project string) (*domain.QueuedBuild, error) {
	args := m.Called(ctx, project)
	build, _ := args.Get(0).(*domain.QueuedBuild)
	return build, args.Error(1)
}

func (m *mockBuildHistory) Builds(ctx context.Context, project string) ([]*domain.QueuedBuild, error) {
	args := m.Called(ctx, project)
	builds, _ := args.Get(0).([]*domain.QueuedBuild)
	return builds, args.Error(1)
}

type mockTagRepository struct{ mock.Mock }

func (m *mockTagRepository) TagExists(ctx context.Context, workspace, tag string) (bool, error) {
	args := m.Called(ctx, workspace, tag)
	return args.Bool(0), args.Error(1)
}
