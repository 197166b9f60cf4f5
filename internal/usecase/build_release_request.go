package usecase

import (
	"errors"
	"strings"

	"github.com/compozy/m2release/internal/domain"
	"github.com/compozy/m2release/internal/form"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Form field names of a release submission.
const (
	FieldCloseNexusStage         = "closeNexusStage"
	FieldRepoDescription         = "repoDescription"
	FieldSpecifyScmCredentials   = "specifyScmCredentials"
	FieldScmUsername             = "scmUsername"
	FieldScmPassword             = "scmPassword"
	FieldSpecifyScmCommentPrefix = "specifyScmCommentPrefix"
	FieldScmCommentPrefix        = "scmCommentPrefix"
	FieldAppendHudsonUserName    = "appendHudsonUserName"
	FieldSpecifyScmTag           = "specifyScmTag"
	FieldScmTag                  = "scmTag"
	FieldIsDryRun                = "isDryRun"
	FieldReleaseVersion          = "releaseVersion"
	FieldDevelopmentVersion      = "developmentVersion"
	FieldParameter               = "parameter"
)

// ReleaseSubmission is the validated outcome of a release form submission.
type ReleaseSubmission struct {
	Request    *domain.ReleaseRequest
	Parameters []domain.ParameterValue
}

// BuildReleaseRequestUseCase decodes and validates a release form submission.
type BuildReleaseRequestUseCase struct {
	Logger *zap.Logger
}

// Execute runs the submission pipeline. Any error means nothing may be
// scheduled; validation failures match domain.ErrInvalidArgument.
func (uc *BuildReleaseRequestUseCase) Execute(
	dec form.Decoder,
	project *domain.Project,
	submitter string,
) (*ReleaseSubmission, error) {
	logger := uc.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	closeNexusStage := dec.ContainsKey(FieldCloseNexusStage)
	repoDescription := ""
	if closeNexusStage {
		repoDescription = derefOr(optionalString(dec, FieldRepoDescription), "")
	}
	specifyScmCredentials := dec.ContainsKey(FieldSpecifyScmCredentials)
	var scmUsername, scmPassword *string
	if specifyScmCredentials {
		scmUsername = optionalString(dec, FieldScmUsername)
		scmPassword = optionalString(dec, FieldScmPassword)
	}
	specifyScmCommentPrefix := dec.ContainsKey(FieldSpecifyScmCommentPrefix)
	var scmCommentPrefix *string
	if specifyScmCommentPrefix {
		scmCommentPrefix = optionalString(dec, FieldScmCommentPrefix)
	}
	specifyScmTag := dec.ContainsKey(FieldSpecifyScmTag)
	var scmTag *string
	if specifyScmTag {
		scmTag = optionalString(dec, FieldScmTag)
	}
	appendUsername := specifyScmCommentPrefix && dec.ContainsKey(FieldAppendHudsonUserName)
	isDryRun := dec.ContainsKey(FieldIsDryRun)

	releaseVersion, err := requiredString(dec, FieldReleaseVersion)
	if err != nil {
		return nil, err
	}
	developmentVersion, err := requiredString(dec, FieldDevelopmentVersion)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateDevelopmentVersion(developmentVersion); err != nil {
		return nil, err
	}
	warnOnVersionOrder(logger, releaseVersion, developmentVersion)

	values, err := resolveParameters(dec, project)
	if err != nil {
		return nil, err
	}
	settings := project.Release
	if strings.TrimSpace(settings.ScmPasswordEnvVar) != "" {
		values = append(values, domain.NewPasswordParameter(settings.ScmPasswordEnvVar, derefOr(scmPassword, "")))
	}
	if strings.TrimSpace(settings.ScmUserEnvVar) != "" {
		values = append(values, domain.NewStringParameter(settings.ScmUserEnvVar, derefOr(scmUsername, "")))
	}
	values = append(values,
		domain.NewStringParameter(envVarOr(settings.ReleaseVersionEnvVar, domain.DefaultReleaseVersionEnvVar), releaseVersion),
		domain.NewStringParameter(envVarOr(settings.DevVersionEnvVar, domain.DefaultDevVersionEnvVar), developmentVersion),
		domain.NewBooleanParameter(envVarOr(settings.DryRunEnvVar, domain.DefaultDryRunEnvVar), isDryRun),
	)

	params := domain.ReleaseRequestParams{
		ReleaseVersion:          releaseVersion,
		DevelopmentVersion:      developmentVersion,
		DryRun:                  isDryRun,
		CloseStagingRepo:        closeNexusStage,
		StagingRepoDescription:  repoDescription,
		ScmTagOverride:          scmTag,
		ScmCommentPrefix:        scmCommentPrefix,
		AppendSubmitterUsername: appendUsername,
		SubmitterIdentity:       submitter,
	}
	if specifyScmCredentials {
		params.ScmCredentials = &domain.ScmCredentials{
			Username: derefOr(scmUsername, ""),
			Password: derefOr(scmPassword, ""),
		}
	}
	request, err := domain.NewReleaseRequest(params)
	if err != nil {
		return nil, err
	}
	return &ReleaseSubmission{Request: request, Parameters: values}, nil
}

// resolveParameters turns every entry of the structured form's "parameter"
// field into a value using the project's definitions.
func resolveParameters(dec form.Decoder, project *domain.Project) ([]domain.ParameterValue, error) {
	submitted, err := dec.SubmittedForm()
	if err != nil {
		return nil, &domain.ValidationError{Field: "json", Message: "invalid form submission", Err: err}
	}
	var values []domain.ParameterValue
	var resolveErr error
	each(submitted.Get(FieldParameter), func(entry gjson.Result) bool {
		if !entry.IsObject() {
			return true
		}
		// a missing name resolves to "" and matches no definition
		name := entry.Get("name").String()
		def, ok := project.ParameterDefinition(name)
		if !ok {
			resolveErr = domain.NewValidationError(name, "No such parameter definition: "+name)
			return false
		}
		value, err := def.CreateValue(entry)
		if err != nil {
			resolveErr = err
			return false
		}
		values = append(values, value)
		return true
	})
	if resolveErr != nil {
		return nil, resolveErr
	}
	return values, nil
}

// each visits a single object or every element of an array.
func each(result gjson.Result, fn func(gjson.Result) bool) {
	switch {
	case result.IsArray():
		result.ForEach(func(_, value gjson.Result) bool {
			return fn(value)
		})
	case result.Exists():
		fn(result)
	}
}

func warnOnVersionOrder(logger *zap.Logger, releaseVersion, developmentVersion string) {
	cmp, err := domain.CompareVersions(developmentVersion, releaseVersion)
	if err != nil {
		return
	}
	if cmp <= 0 {
		logger.Warn("Development version does not follow release version",
			zap.String("release_version", releaseVersion),
			zap.String("development_version", developmentVersion),
		)
	}
}

// optionalString returns nil when the field is absent.
func optionalString(dec form.Decoder, key string) *string {
	value, err := dec.GetString(key)
	if err != nil {
		return nil
	}
	return &value
}

func requiredString(dec form.Decoder, key string) (string, error) {
	value, err := dec.GetString(key)
	if err != nil {
		if errors.Is(err, form.ErrNotFound) {
			return "", &domain.ValidationError{
				Field:   key,
				Message: "missing required field",
				Err:     err,
			}
		}
		return "", err
	}
	return value, nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func envVarOr(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}
