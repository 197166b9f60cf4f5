package service

import (
	"errors"

	"github.com/compozy/m2release/internal/domain"
)

// ErrAccessDenied is returned when the caller may not release a project.
var ErrAccessDenied = errors.New("access denied")

// Authorizer decides whether a caller holds the release permission on a project.
type Authorizer interface {
	CanRelease(caller string, project *domain.Project) bool
}

type releaserAuthorizer struct{}

// NewReleaserAuthorizer checks callers against each project's releasers list.
func NewReleaserAuthorizer() Authorizer {
	return releaserAuthorizer{}
}

func (releaserAuthorizer) CanRelease(caller string, project *domain.Project) bool {
	if project == nil {
		return false
	}
	return project.IsReleaser(caller)
}

// Check returns ErrAccessDenied when caller is not allowed to release project.
func Check(a Authorizer, caller string, project *domain.Project) error {
	if a == nil || !a.CanRelease(caller, project) {
		return ErrAccessDenied
	}
	return nil
}
