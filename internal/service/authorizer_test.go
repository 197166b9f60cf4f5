package service

import (
	"testing"

	"github.com/compozy/m2release/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestReleaserAuthorizer(t *testing.T) {
	project := &domain.Project{Name: "widgets", Release: domain.ReleaseSettings{Releasers: []string{"alice"}}}
	open := &domain.Project{Name: "gadgets", Release: domain.ReleaseSettings{Releasers: []string{"*"}}}
	authz := NewReleaserAuthorizer()
	t.Run("Should allow listed releasers", func(t *testing.T) {
		assert.True(t, authz.CanRelease("alice", project))
		assert.NoError(t, Check(authz, "alice", project))
	})
	t.Run("Should deny other users", func(t *testing.T) {
		assert.False(t, authz.CanRelease("bob", project))
		assert.ErrorIs(t, Check(authz, "bob", project), ErrAccessDenied)
	})
	t.Run("Should admit any authenticated user with wildcard", func(t *testing.T) {
		assert.True(t, authz.CanRelease("bob", open))
		assert.False(t, authz.CanRelease(domain.AnonymousUser, open))
		assert.False(t, authz.CanRelease("", open))
	})
	t.Run("Should deny when project is nil", func(t *testing.T) {
		assert.False(t, authz.CanRelease("alice", nil))
	})
	t.Run("Should deny without an authorizer", func(t *testing.T) {
		assert.ErrorIs(t, Check(nil, "alice", project), ErrAccessDenied)
	})
}
