package usecase

import (
	"strings"

	"github.com/compozy/m2release/internal/domain"
	"go.uber.org/zap"
)

const (
	// NaNVersion is returned when no release version can be derived.
	NaNVersion = "NaN"
	// NaNSnapshotVersion is returned when no development version can be derived.
	NaNSnapshotVersion = NaNVersion + domain.SnapshotSuffix
	// DefaultTagPrefix stands in for the artifact id when a project has no root module.
	DefaultTagPrefix = "M2RELEASE-TAG"
)

// VersionPlanner derives release and development versions from a project's
// current version. It holds no state besides its logger and is safe for
// concurrent use.
type VersionPlanner struct {
	Logger *zap.Logger
}

// NewVersionPlanner creates a planner that reports parse fallbacks to logger.
func NewVersionPlanner(logger *zap.Logger) *VersionPlanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VersionPlanner{Logger: logger}
}

func (p *VersionPlanner) logger() *zap.Logger {
	if p == nil || p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// ComputeReleaseVersion returns current without its snapshot marker. A blank
// version yields "NaN". An unparsable version has every literal "-SNAPSHOT"
// removed instead.
func (p *VersionPlanner) ComputeReleaseVersion(current string) string {
	if strings.TrimSpace(current) == "" {
		return NaNVersion
	}
	v, err := domain.NewVersion(current)
	if err != nil {
		p.logger().Warn("Failed to compute release version", zap.String("version", current), zap.Error(err))
		return strings.ReplaceAll(current, domain.SnapshotSuffix, "")
	}
	if !v.IsSnapshot() {
		p.logger().Debug("Current version is already a release version", zap.String("version", current))
	}
	return v.ReleaseString()
}

// ComputeNextDevelopmentVersion returns the snapshot version following
// current. Blank or unparsable input yields "NaN-SNAPSHOT"; unlike
// ComputeReleaseVersion there is no textual fallback.
func (p *VersionPlanner) ComputeNextDevelopmentVersion(current string) string {
	if strings.TrimSpace(current) == "" {
		return NaNSnapshotVersion
	}
	v, err := domain.NewVersion(current)
	if err != nil {
		p.logger().Warn("Failed to compute next version", zap.String("version", current), zap.Error(err))
		return NaNSnapshotVersion
	}
	next, err := v.Next()
	if err != nil {
		p.logger().Warn("Failed to compute next version", zap.String("version", current), zap.Error(err))
		return NaNSnapshotVersion
	}
	return next.SnapshotString()
}

// ComputeDefaultTagName returns "{artifactID}-{releaseVersion}", using
// M2RELEASE-TAG when no artifact id is known.
func (p *VersionPlanner) ComputeDefaultTagName(artifactID *string, releaseVersion string) string {
	prefix := DefaultTagPrefix
	if artifactID != nil {
		prefix = *artifactID
	}
	return prefix + "-" + releaseVersion
}

// ComputeRepoDescription returns the default staging repository description.
func (p *VersionPlanner) ComputeRepoDescription(moduleName, releaseVersion string) string {
	return moduleName + ":" + releaseVersion
}

// ComputeVersions derives the full version triple for a project.
func (p *VersionPlanner) ComputeVersions(project *domain.Project) domain.VersionTriple {
	return p.PlanVersion(project.CurrentVersion(), project.ArtifactID())
}

// PlanVersion derives the version triple for a bare version string.
func (p *VersionPlanner) PlanVersion(current string, artifactID *string) domain.VersionTriple {
	release := p.ComputeReleaseVersion(current)
	return domain.VersionTriple{
		CurrentVersion:         current,
		ReleaseVersion:         release,
		NextDevelopmentVersion: p.ComputeNextDevelopmentVersion(current),
		ScmTagName:             p.ComputeDefaultTagName(artifactID, release),
	}
}

// PlanView is everything needed to pre-populate the release form.
type PlanView struct {
	Project                      string                       `json:"project"`
	Versions                     domain.VersionTriple         `json:"versions"`
	RepoDescription              string                       `json:"repo_description"`
	NexusSupportEnabled          bool                         `json:"nexus_support_enabled"`
	SelectCustomScmCommentPrefix bool                         `json:"select_custom_scm_comment_prefix"`
	SelectAppendUsername         bool                         `json:"select_append_username"`
	SelectScmCredentials         bool                         `json:"select_scm_credentials"`
	SelectCustomScmTag           bool                         `json:"select_custom_scm_tag"`
	ParameterDefinitions         []domain.ParameterDefinition `json:"parameter_definitions"`
	Permalinks                   []domain.Permalink           `json:"permalinks"`
	ScmTagExists                 *bool                        `json:"scm_tag_exists,omitempty"`
}

// Plan assembles the form defaults for a project. The custom tag field is
// preselected when the project has no root module to derive a tag from.
func (p *VersionPlanner) Plan(project *domain.Project) PlanView {
	versions := p.ComputeVersions(project)
	view := PlanView{
		Project:                      project.Name,
		Versions:                     versions,
		NexusSupportEnabled:          project.Release.NexusSupport,
		SelectCustomScmCommentPrefix: project.Release.SelectCustomScmCommentPrefix,
		SelectAppendUsername:         project.Release.SelectAppendUsername,
		SelectScmCredentials:         project.Release.SelectScmCredentials,
		SelectCustomScmTag:           project.RootModule == nil,
		ParameterDefinitions:         append([]domain.ParameterDefinition{}, project.ParameterDefinitions...),
		Permalinks:                   domain.Permalinks(),
	}
	if project.RootModule != nil {
		view.RepoDescription = p.ComputeRepoDescription(project.RootModule.Name, versions.ReleaseVersion)
	}
	return view
}
