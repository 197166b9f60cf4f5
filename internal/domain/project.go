package domain

import (
	"slices"
	"strings"
)

const (
	DefaultReleaseVersionEnvVar = "MVN_RELEASE_VERSION"
	DefaultDevVersionEnvVar     = "MVN_DEV_VERSION"
	DefaultDryRunEnvVar         = "MVN_ISDRYRUN"
)

// AnonymousUser identifies callers that did not authenticate.
const AnonymousUser = "anonymous"

// Module is the root module of a project.
type Module struct {
	GroupID    string `mapstructure:"group_id" json:"group_id"`
	ArtifactID string `mapstructure:"artifact_id" json:"artifact_id"`
	Name       string `mapstructure:"name" json:"name"`
	Version    string `mapstructure:"version" json:"version"`
}

// ReleaseSettings is the per-project configuration of the release action.
type ReleaseSettings struct {
	ScmUserEnvVar                string   `mapstructure:"scm_user_env_var"`
	ScmPasswordEnvVar            string   `mapstructure:"scm_password_env_var"`
	ReleaseVersionEnvVar         string   `mapstructure:"release_version_env_var"`
	DevVersionEnvVar             string   `mapstructure:"dev_version_env_var"`
	DryRunEnvVar                 string   `mapstructure:"dry_run_env_var"`
	SelectCustomScmCommentPrefix bool     `mapstructure:"select_custom_scm_comment_prefix"`
	SelectAppendUsername         bool     `mapstructure:"select_append_username"`
	SelectScmCredentials         bool     `mapstructure:"select_scm_credentials"`
	NexusSupport                 bool     `mapstructure:"nexus_support"`
	Releasers                    []string `mapstructure:"releasers"`
}

// Project is a build project the release action is attached to.
type Project struct {
	Name                 string                `mapstructure:"name"`
	URL                  string                `mapstructure:"url"`
	RootModule           *Module               `mapstructure:"root_module"`
	ParameterDefinitions []ParameterDefinition `mapstructure:"parameters"`
	Release              ReleaseSettings       `mapstructure:"release"`
	Workspace            string                `mapstructure:"workspace"`
}

// ApplyDefaults fills the environment variable names that were left blank.
func (p *Project) ApplyDefaults() {
	if p.URL == "" {
		p.URL = "job/" + p.Name
	}
	if strings.TrimSpace(p.Release.ReleaseVersionEnvVar) == "" {
		p.Release.ReleaseVersionEnvVar = DefaultReleaseVersionEnvVar
	}
	if strings.TrimSpace(p.Release.DevVersionEnvVar) == "" {
		p.Release.DevVersionEnvVar = DefaultDevVersionEnvVar
	}
	if strings.TrimSpace(p.Release.DryRunEnvVar) == "" {
		p.Release.DryRunEnvVar = DefaultDryRunEnvVar
	}
}

// CurrentVersion returns the root module version, or "" without a root module.
func (p *Project) CurrentVersion() string {
	if p.RootModule == nil {
		return ""
	}
	return p.RootModule.Version
}

// ArtifactID returns the root module artifact id, or nil without a root module.
func (p *Project) ArtifactID() *string {
	if p.RootModule == nil {
		return nil
	}
	id := p.RootModule.ArtifactID
	return &id
}

// ParameterDefinition looks up a configured parameter by name.
func (p *Project) ParameterDefinition(name string) (ParameterDefinition, bool) {
	for _, d := range p.ParameterDefinitions {
		if d.Name == name {
			return d, true
		}
	}
	return ParameterDefinition{}, false
}

// IsReleaser reports whether user appears in the project's releaser list.
// A "*" entry admits every authenticated user.
func (p *Project) IsReleaser(user string) bool {
	if user == "" || user == AnonymousUser {
		return false
	}
	if slices.Contains(p.Release.Releasers, "*") {
		return true
	}
	return slices.Contains(p.Release.Releasers, user)
}
