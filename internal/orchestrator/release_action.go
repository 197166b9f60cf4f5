package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/compozy/m2release/internal/domain"
	"github.com/compozy/m2release/internal/form"
	"github.com/compozy/m2release/internal/repository"
	"github.com/compozy/m2release/internal/service"
	"github.com/compozy/m2release/internal/usecase"
	"go.uber.org/zap"
)

// DecodeFunc reads a submitted form. Submit calls it only for authorized
// callers of an existing project.
type DecodeFunc func() (form.Decoder, error)

// SubmitResult tells the caller where to send the user after a submission.
type SubmitResult struct {
	Scheduled bool   `json:"scheduled"`
	Redirect  string `json:"redirect"`
}

// ReleaseActionDeps groups the collaborators of a ReleaseAction.
type ReleaseActionDeps struct {
	Projects  repository.ProjectRepository
	Tags      repository.TagRepository
	Authz     service.Authorizer
	Scheduler service.Scheduler
	History   service.BuildHistory
	Planner   *usecase.VersionPlanner
	Builder   *usecase.BuildReleaseRequestUseCase
	Logger    *zap.Logger
}

// ReleaseAction is the release entry point attached to every project.
type ReleaseAction struct {
	projects  repository.ProjectRepository
	tags      repository.TagRepository
	authz     service.Authorizer
	scheduler service.Scheduler
	history   service.BuildHistory
	planner   *usecase.VersionPlanner
	builder   *usecase.BuildReleaseRequestUseCase
	logger    *zap.Logger
}

// NewReleaseAction creates a release action. Tags and History may be nil.
func NewReleaseAction(deps ReleaseActionDeps) *ReleaseAction {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	planner := deps.Planner
	if planner == nil {
		planner = usecase.NewVersionPlanner(logger)
	}
	builder := deps.Builder
	if builder == nil {
		builder = &usecase.BuildReleaseRequestUseCase{Logger: logger}
	}
	return &ReleaseAction{
		projects:  deps.Projects,
		tags:      deps.Tags,
		authz:     deps.Authz,
		scheduler: deps.Scheduler,
		history:   deps.History,
		planner:   planner,
		builder:   builder,
		logger:    logger,
	}
}

// View returns the pre-populated release form for projectName.
func (a *ReleaseAction) View(ctx context.Context, caller, projectName string) (*usecase.PlanView, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultViewTimeout)
	defer cancel()
	project, err := a.authorize(ctx, caller, projectName)
	if err != nil {
		return nil, err
	}
	view := a.planner.Plan(project)
	if project.Workspace != "" && a.tags != nil && project.RootModule != nil {
		exists, err := a.tags.TagExists(ctx, project.Workspace, view.Versions.ScmTagName)
		if err != nil {
			a.logger.Warn("failed to inspect scm tags",
				zap.String("project", project.Name),
				zap.String("workspace", project.Workspace),
				zap.Error(err),
			)
		} else {
			view.ScmTagExists = &exists
		}
	}
	return &view, nil
}

// Submit validates a release form submission and hands it to the scheduler.
// The form is decoded after the caller has been authorized. Validation
// failures are returned as errors and nothing is scheduled; a scheduler
// refusal is reported through the result's redirect target.
func (a *ReleaseAction) Submit(
	ctx context.Context,
	caller, projectName string,
	decode DecodeFunc,
) (*SubmitResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultSubmitTimeout)
	defer cancel()
	project, err := a.authorize(ctx, caller, projectName)
	if err != nil {
		return nil, err
	}
	dec, err := decode()
	if err != nil {
		return nil, &domain.ValidationError{Field: "form", Message: "malformed form submission", Err: err}
	}
	submission, err := a.builder.Execute(dec, project, caller)
	if err != nil {
		a.logger.Info("release submission rejected",
			zap.String("project", project.Name),
			zap.String("caller", caller),
			zap.String("encoding", string(dec.Encoding())),
			zap.Error(err),
		)
		return nil, err
	}
	projectURL := "/" + strings.TrimPrefix(project.URL, "/")
	cause := domain.ReleaseCause{Submitter: caller}
	if a.scheduler == nil || !a.scheduler.ScheduleBuild(
		ctx, project.Name, DefaultQuietPeriod, cause, submission.Parameters, submission.Request,
	) {
		a.logger.Warn("release build was not scheduled", zap.String("project", project.Name))
		return &SubmitResult{Scheduled: false, Redirect: projectURL + FailedPath}, nil
	}
	a.logger.Info("release build scheduled",
		zap.String("project", project.Name),
		zap.String("release_version", submission.Request.ReleaseVersion()),
		zap.String("development_version", submission.Request.DevelopmentVersion()),
		zap.Bool("dry_run", submission.Request.IsDryRun()),
	)
	return &SubmitResult{Scheduled: true, Redirect: projectURL}, nil
}

// LastRelease resolves the last release permalink of projectName.
func (a *ReleaseAction) LastRelease(ctx context.Context, caller, projectName string) (*domain.QueuedBuild, error) {
	project, err := a.authorize(ctx, caller, projectName)
	if err != nil {
		return nil, err
	}
	if a.history == nil {
		return nil, repository.ErrBuildNotFound
	}
	return a.history.LastRelease(ctx, project.Name)
}

func (a *ReleaseAction) authorize(ctx context.Context, caller, projectName string) (*domain.Project, error) {
	if err := ValidateProjectName(projectName); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrProjectNotFound, err)
	}
	if err := ValidateCaller(caller); err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrAccessDenied, err)
	}
	project, err := a.projects.Get(ctx, projectName)
	if err != nil {
		return nil, err
	}
	if err := service.Check(a.authz, caller, project); err != nil {
		a.logger.Info("release access denied",
			zap.String("project", project.Name),
			zap.String("caller", caller),
		)
		return nil, err
	}
	return project, nil
}
