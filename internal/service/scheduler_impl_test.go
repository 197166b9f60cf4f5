package service

import (
	"context"
	"errors"
	"testing"

	"github.com/compozy/m2release/internal/domain"
	"github.com/compozy/m2release/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockQueueRepository struct{ mock.Mock }

func (m *mockQueueRepository) Enqueue(ctx context.Context, build *domain.QueuedBuild) error {
	args := m.Called(ctx, build)
	return args.Error(0)
}
func (m *mockQueueRepository) Load(ctx context.Context, project, id string) (*domain.QueuedBuild, error) {
	args := m.Called(ctx, project, id)
	build, _ := args.Get(0).(*domain.QueuedBuild)
	return build, args.Error(1)
}
func (m *mockQueueRepository) LatestRelease(ctx context.Context, project string) (*domain.QueuedBuild, error) {
	args := m.Called(ctx, project)
	build, _ := args.Get(0).(*domain.QueuedBuild)
	return build, args.Error(1)
}
func (m *mockQueueRepository) List(ctx context.Context, project string) ([]*domain.QueuedBuild, error) {
	args := m.Called(ctx, project)
	builds, _ := args.Get(0).([]*domain.QueuedBuild)
	return builds, args.Error(1)
}

func testRelease(t *testing.T) *domain.ReleaseRequest {
	t.Helper()
	req, err := domain.NewReleaseRequest(domain.ReleaseRequestParams{
		ReleaseVersion:     "1.2",
		DevelopmentVersion: "1.3-SNAPSHOT",
		SubmitterIdentity:  "alice",
	})
	require.NoError(t, err)
	return req
}

func TestQueueScheduler_ScheduleBuild(t *testing.T) {
	ctx := context.Background()
	cause := domain.ReleaseCause{Submitter: "alice"}
	params := []domain.ParameterValue{domain.NewStringParameter("MVN_RELEASE_VERSION", "1.2")}
	t.Run("Should enqueue release build", func(t *testing.T) {
		queue := new(mockQueueRepository)
		queue.On("Enqueue", mock.Anything, mock.MatchedBy(func(b *domain.QueuedBuild) bool {
			return b.Project == "widgets" && b.IsRelease() && b.Cause.Submitter == "alice"
		})).Return(nil).Once()
		s := NewQueueScheduler(queue, nil)
		assert.True(t, s.ScheduleBuild(ctx, "widgets", 0, cause, params, testRelease(t)))
		queue.AssertExpectations(t)
	})
	t.Run("Should retry while queue is locked", func(t *testing.T) {
		queue := new(mockQueueRepository)
		queue.On("Enqueue", mock.Anything, mock.Anything).Return(repository.ErrQueueLocked).Once()
		queue.On("Enqueue", mock.Anything, mock.Anything).Return(nil).Once()
		s := NewQueueScheduler(queue, nil)
		assert.True(t, s.ScheduleBuild(ctx, "widgets", 0, cause, params, testRelease(t)))
		queue.AssertNumberOfCalls(t, "Enqueue", 2)
	})
	t.Run("Should give up after retries are exhausted", func(t *testing.T) {
		queue := new(mockQueueRepository)
		queue.On("Enqueue", mock.Anything, mock.Anything).Return(repository.ErrQueueLocked)
		s := NewQueueScheduler(queue, nil)
		assert.False(t, s.ScheduleBuild(ctx, "widgets", 0, cause, params, testRelease(t)))
		queue.AssertNumberOfCalls(t, "Enqueue", int(DefaultRetryCount)+1)
	})
	t.Run("Should not retry other errors", func(t *testing.T) {
		queue := new(mockQueueRepository)
		queue.On("Enqueue", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
		s := NewQueueScheduler(queue, nil)
		assert.False(t, s.ScheduleBuild(ctx, "widgets", 0, cause, params, testRelease(t)))
		queue.AssertNumberOfCalls(t, "Enqueue", 1)
	})
}

func TestQueueScheduler_LastRelease(t *testing.T) {
	ctx := context.Background()
	t.Run("Should return latest release from queue", func(t *testing.T) {
		queue := new(mockQueueRepository)
		want := &domain.QueuedBuild{ID: "abc", Project: "widgets"}
		queue.On("LatestRelease", mock.Anything, "widgets").Return(want, nil)
		got, err := NewQueueScheduler(queue, nil).LastRelease(ctx, "widgets")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
	t.Run("Should retry while queue is locked", func(t *testing.T) {
		queue := new(mockQueueRepository)
		want := &domain.QueuedBuild{ID: "abc", Project: "widgets"}
		queue.On("LatestRelease", mock.Anything, "widgets").Return(nil, repository.ErrQueueLocked).Once()
		queue.On("LatestRelease", mock.Anything, "widgets").Return(want, nil).Once()
		got, err := NewQueueScheduler(queue, nil).LastRelease(ctx, "widgets")
		require.NoError(t, err)
		assert.Equal(t, want, got)
		queue.AssertNumberOfCalls(t, "LatestRelease", 2)
	})
	t.Run("Should wrap not found error", func(t *testing.T) {
		queue := new(mockQueueRepository)
		queue.On("LatestRelease", mock.Anything, "widgets").Return(nil, repository.ErrBuildNotFound)
		_, err := NewQueueScheduler(queue, nil).LastRelease(ctx, "widgets")
		assert.ErrorIs(t, err, repository.ErrBuildNotFound)
	})
}

func TestQueueScheduler_Builds(t *testing.T) {
	ctx := context.Background()
	t.Run("Should list builds after lock contention", func(t *testing.T) {
		queue := new(mockQueueRepository)
		want := []*domain.QueuedBuild{{ID: "a"}, {ID: "b"}}
		queue.On("List", mock.Anything, "widgets").Return(nil, repository.ErrQueueLocked).Once()
		queue.On("List", mock.Anything, "widgets").Return(want, nil).Once()
		got, err := NewQueueScheduler(queue, nil).Builds(ctx, "widgets")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}
