package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
)

// TagRepository answers questions about existing source-control tags.
type TagRepository interface {
	TagExists(ctx context.Context, workspace, tag string) (bool, error)
}

// gitTagRepository inspects local git checkouts.
type gitTagRepository struct{}

// NewGitTagRepository creates a TagRepository backed by go-git.
func NewGitTagRepository() TagRepository {
	return &gitTagRepository{}
}

// TagExists checks if a tag exists in the checkout at workspace.
func (r *gitTagRepository) TagExists(_ context.Context, workspace, tag string) (bool, error) {
	repo, err := git.PlainOpen(workspace)
	if err != nil {
		return false, fmt.Errorf("failed to open git repository %s: %w", workspace, err)
	}
	_, err = repo.Tag(tag)
	if errors.Is(err, git.ErrTagNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check tag %s: %w", tag, err)
	}
	return true, nil
}
