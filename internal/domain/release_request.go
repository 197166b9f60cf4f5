package domain

import "encoding/json"

// ScmCredentials are the source-control credentials supplied with a release.
type ScmCredentials struct {
	Username string
	Password string
}

// ReleaseRequestParams carries the values a ReleaseRequest is built from.
type ReleaseRequestParams struct {
	ReleaseVersion          string
	DevelopmentVersion      string
	DryRun                  bool
	CloseStagingRepo        bool
	StagingRepoDescription  string
	ScmCredentials          *ScmCredentials
	ScmTagOverride          *string
	ScmCommentPrefix        *string
	AppendSubmitterUsername bool
	SubmitterIdentity       string
}

// ReleaseRequest is the release payload handed to the scheduler. It cannot be
// changed once constructed.
type ReleaseRequest struct {
	p ReleaseRequestParams
}

// NewReleaseRequest validates params and returns the immutable request.
func NewReleaseRequest(params ReleaseRequestParams) (*ReleaseRequest, error) {
	if err := ValidateDevelopmentVersion(params.DevelopmentVersion); err != nil {
		return nil, err
	}
	if !params.CloseStagingRepo {
		params.StagingRepoDescription = ""
	}
	if params.ScmCommentPrefix == nil {
		params.AppendSubmitterUsername = false
	}
	if params.ScmCredentials != nil {
		creds := *params.ScmCredentials
		params.ScmCredentials = &creds
	}
	params.ScmTagOverride = copyString(params.ScmTagOverride)
	params.ScmCommentPrefix = copyString(params.ScmCommentPrefix)
	return &ReleaseRequest{p: params}, nil
}

func (r *ReleaseRequest) ReleaseVersion() string         { return r.p.ReleaseVersion }
func (r *ReleaseRequest) DevelopmentVersion() string     { return r.p.DevelopmentVersion }
func (r *ReleaseRequest) IsDryRun() bool                 { return r.p.DryRun }
func (r *ReleaseRequest) CloseStagingRepo() bool         { return r.p.CloseStagingRepo }
func (r *ReleaseRequest) StagingRepoDescription() string { return r.p.StagingRepoDescription }
func (r *ReleaseRequest) AppendSubmitterUsername() bool  { return r.p.AppendSubmitterUsername }
func (r *ReleaseRequest) SubmitterIdentity() string      { return r.p.SubmitterIdentity }

// ScmCredentials returns a copy of the credentials, or nil when none were given.
func (r *ReleaseRequest) ScmCredentials() *ScmCredentials {
	if r.p.ScmCredentials == nil {
		return nil
	}
	creds := *r.p.ScmCredentials
	return &creds
}

// ScmTagOverride returns the user supplied tag name, if any.
func (r *ReleaseRequest) ScmTagOverride() (string, bool) {
	return derefString(r.p.ScmTagOverride)
}

// ScmCommentPrefix returns the user supplied commit comment prefix, if any.
func (r *ReleaseRequest) ScmCommentPrefix() (string, bool) {
	return derefString(r.p.ScmCommentPrefix)
}

type releaseRequestJSON struct {
	ReleaseVersion          string  `json:"release_version"`
	DevelopmentVersion      string  `json:"development_version"`
	DryRun                  bool    `json:"dry_run"`
	CloseStagingRepo        bool    `json:"close_staging_repo"`
	StagingRepoDescription  string  `json:"staging_repo_description,omitempty"`
	ScmUsername             *string `json:"scm_username,omitempty"`
	ScmPasswordSet          bool    `json:"scm_password_set"`
	ScmTagOverride          *string `json:"scm_tag,omitempty"`
	ScmCommentPrefix        *string `json:"scm_comment_prefix,omitempty"`
	AppendSubmitterUsername bool    `json:"append_submitter_username"`
	SubmitterIdentity       string  `json:"submitter"`
}

// MarshalJSON renders the request without the SCM password.
func (r *ReleaseRequest) MarshalJSON() ([]byte, error) {
	out := releaseRequestJSON{
		ReleaseVersion:          r.p.ReleaseVersion,
		DevelopmentVersion:      r.p.DevelopmentVersion,
		DryRun:                  r.p.DryRun,
		CloseStagingRepo:        r.p.CloseStagingRepo,
		StagingRepoDescription:  r.p.StagingRepoDescription,
		ScmTagOverride:          r.p.ScmTagOverride,
		ScmCommentPrefix:        r.p.ScmCommentPrefix,
		AppendSubmitterUsername: r.p.AppendSubmitterUsername,
		SubmitterIdentity:       r.p.SubmitterIdentity,
	}
	if creds := r.p.ScmCredentials; creds != nil {
		user := creds.Username
		out.ScmUsername = &user
		out.ScmPasswordSet = creds.Password != ""
	}
	return json.Marshal(out)
}

// ValidateDevelopmentVersion enforces that version is a snapshot version.
func ValidateDevelopmentVersion(version string) error {
	if !IsSnapshotVersion(version) {
		return NewValidationError("developmentVersion", DevelopmentVersionMessage(version))
	}
	return nil
}

// DevelopmentVersionMessage is the user facing text for a non-snapshot
// development version.
func DevelopmentVersionMessage(version string) string {
	return "Developer Version (" + version + `) is not a valid version (it must end with "-SNAPSHOT")`
}

// ReleaseCause records why a release build was queued.
type ReleaseCause struct {
	Submitter string `json:"submitter"`
}

// ShortDescription is the text shown next to a queued release build.
func (c ReleaseCause) ShortDescription() string {
	return "Triggered by release action (submitted by " + c.Submitter + ")"
}

// VersionTriple is the set of versions derived from a project's current version.
type VersionTriple struct {
	CurrentVersion         string `json:"current_version"`
	ReleaseVersion         string `json:"release_version"`
	NextDevelopmentVersion string `json:"next_development_version"`
	ScmTagName             string `json:"scm_tag_name"`
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func derefString(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}
