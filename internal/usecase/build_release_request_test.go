package usecase

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/compozy/m2release/internal/domain"
	"github.com/compozy/m2release/internal/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProject() *domain.Project {
	project := &domain.Project{
		Name: "widgets",
		RootModule: &domain.Module{
			ArtifactID: "widgets",
			Name:       "Widgets",
			Version:    "1.2-SNAPSHOT",
		},
		ParameterDefinitions: []domain.ParameterDefinition{
			{Name: "ENV", Kind: domain.ParameterKindChoice, Choices: []string{"dev", "prod"}},
			{Name: "SKIP_TESTS", Kind: domain.ParameterKindBoolean},
		},
	}
	project.ApplyDefaults()
	return project
}

func baseValues() url.Values {
	return url.Values{
		FieldReleaseVersion:     {"1.2"},
		FieldDevelopmentVersion: {"1.3-SNAPSHOT"},
	}
}

func multipartRequest(t *testing.T, values url.Values) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(t, w.WriteField(k, v))
		}
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/submit", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func standardRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestBuildReleaseRequestUseCase_Execute(t *testing.T) {
	uc := &BuildReleaseRequestUseCase{}
	t.Run("Should build a minimal release request", func(t *testing.T) {
		sub, err := uc.Execute(form.NewValuesDecoder(baseValues()), testProject(), "alice")
		require.NoError(t, err)
		req := sub.Request
		assert.Equal(t, "1.2", req.ReleaseVersion())
		assert.Equal(t, "1.3-SNAPSHOT", req.DevelopmentVersion())
		assert.False(t, req.IsDryRun())
		assert.False(t, req.CloseStagingRepo())
		assert.Nil(t, req.ScmCredentials())
		_, ok := req.ScmTagOverride()
		assert.False(t, ok)
		_, ok = req.ScmCommentPrefix()
		assert.False(t, ok)
		assert.Equal(t, "alice", req.SubmitterIdentity())
	})
	t.Run("Should always append version and dry run parameters", func(t *testing.T) {
		sub, err := uc.Execute(form.NewValuesDecoder(baseValues()), testProject(), "alice")
		require.NoError(t, err)
		assert.Equal(t, []domain.ParameterValue{
			domain.NewStringParameter("MVN_RELEASE_VERSION", "1.2"),
			domain.NewStringParameter("MVN_DEV_VERSION", "1.3-SNAPSHOT"),
			domain.NewBooleanParameter("MVN_ISDRYRUN", false),
		}, sub.Parameters)
	})
	t.Run("Should expose scm credentials when env vars are configured", func(t *testing.T) {
		project := testProject()
		project.Release.ScmUserEnvVar = "SCM_USER"
		project.Release.ScmPasswordEnvVar = "SCM_PASS"
		values := baseValues()
		values.Set(FieldSpecifyScmCredentials, "on")
		values.Set(FieldScmUsername, "bob")
		values.Set(FieldScmPassword, "hunter2")
		values.Set(FieldIsDryRun, "on")
		sub, err := uc.Execute(form.NewValuesDecoder(values), project, "alice")
		require.NoError(t, err)
		require.Len(t, sub.Parameters, 5)
		assert.Equal(t, domain.NewPasswordParameter("SCM_PASS", "hunter2"), sub.Parameters[0])
		assert.Equal(t, domain.NewStringParameter("SCM_USER", "bob"), sub.Parameters[1])
		assert.Equal(t, domain.NewBooleanParameter("MVN_ISDRYRUN", true), sub.Parameters[4])
		assert.Equal(t, &domain.ScmCredentials{Username: "bob", Password: "hunter2"}, sub.Request.ScmCredentials())
		assert.True(t, sub.Request.IsDryRun())
	})
	t.Run("Should expose empty credentials when none were supplied", func(t *testing.T) {
		project := testProject()
		project.Release.ScmUserEnvVar = "SCM_USER"
		project.Release.ScmPasswordEnvVar = "SCM_PASS"
		sub, err := uc.Execute(form.NewValuesDecoder(baseValues()), project, "alice")
		require.NoError(t, err)
		assert.Equal(t, domain.NewPasswordParameter("SCM_PASS", ""), sub.Parameters[0])
		assert.Equal(t, domain.NewStringParameter("SCM_USER", ""), sub.Parameters[1])
	})
	t.Run("Should read optional fields only when their trigger is set", func(t *testing.T) {
		values := baseValues()
		values.Set(FieldRepoDescription, "ignored")
		values.Set(FieldScmTag, "ignored")
		values.Set(FieldAppendHudsonUserName, "on")
		sub, err := uc.Execute(form.NewValuesDecoder(values), testProject(), "alice")
		require.NoError(t, err)
		assert.Empty(t, sub.Request.StagingRepoDescription())
		_, ok := sub.Request.ScmTagOverride()
		assert.False(t, ok)
		assert.False(t, sub.Request.AppendSubmitterUsername())
	})
	t.Run("Should capture triggered optional fields", func(t *testing.T) {
		values := baseValues()
		values.Set(FieldCloseNexusStage, "on")
		values.Set(FieldRepoDescription, "Widgets:1.2")
		values.Set(FieldSpecifyScmTag, "on")
		values.Set(FieldScmTag, "widgets-1.2")
		values.Set(FieldSpecifyScmCommentPrefix, "on")
		values.Set(FieldScmCommentPrefix, "[release]")
		values.Set(FieldAppendHudsonUserName, "on")
		sub, err := uc.Execute(form.NewValuesDecoder(values), testProject(), "alice")
		require.NoError(t, err)
		assert.True(t, sub.Request.CloseStagingRepo())
		assert.Equal(t, "Widgets:1.2", sub.Request.StagingRepoDescription())
		tag, _ := sub.Request.ScmTagOverride()
		assert.Equal(t, "widgets-1.2", tag)
		prefix, _ := sub.Request.ScmCommentPrefix()
		assert.Equal(t, "[release]", prefix)
		assert.True(t, sub.Request.AppendSubmitterUsername())
	})
	t.Run("Should treat absent but expected fields as null", func(t *testing.T) {
		values := baseValues()
		values.Set(FieldSpecifyScmTag, "on")
		values.Set(FieldSpecifyScmCommentPrefix, "on")
		sub, err := uc.Execute(form.NewValuesDecoder(values), testProject(), "alice")
		require.NoError(t, err)
		_, ok := sub.Request.ScmTagOverride()
		assert.False(t, ok)
		_, ok = sub.Request.ScmCommentPrefix()
		assert.False(t, ok)
	})
	t.Run("Should reject development version without snapshot suffix", func(t *testing.T) {
		values := baseValues()
		values.Set(FieldDevelopmentVersion, "1.3")
		sub, err := uc.Execute(form.NewValuesDecoder(values), testProject(), "alice")
		assert.Nil(t, sub)
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Contains(t, err.Error(), "Developer Version (1.3)")
	})
	t.Run("Should reject missing mandatory fields", func(t *testing.T) {
		for _, field := range []string{FieldReleaseVersion, FieldDevelopmentVersion} {
			values := baseValues()
			values.Del(field)
			_, err := uc.Execute(form.NewValuesDecoder(values), testProject(), "alice")
			require.ErrorIs(t, err, domain.ErrInvalidArgument, field)
			assert.ErrorIs(t, err, form.ErrNotFound, field)
		}
	})
	t.Run("Should resolve submitted parameters against definitions", func(t *testing.T) {
		values := baseValues()
		values.Set("json", `{"parameter":[{"name":"ENV","value":"prod"},{"name":"SKIP_TESTS","value":true},null]}`)
		sub, err := uc.Execute(form.NewValuesDecoder(values), testProject(), "alice")
		require.NoError(t, err)
		require.Len(t, sub.Parameters, 5)
		assert.Equal(t, domain.NewStringParameter("ENV", "prod"), sub.Parameters[0])
		assert.Equal(t, domain.NewBooleanParameter("SKIP_TESTS", true), sub.Parameters[1])
	})
	t.Run("Should accept a single parameter object", func(t *testing.T) {
		values := baseValues()
		values.Set("json", `{"parameter":{"name":"ENV","value":"dev"}}`)
		sub, err := uc.Execute(form.NewValuesDecoder(values), testProject(), "alice")
		require.NoError(t, err)
		assert.Equal(t, domain.NewStringParameter("ENV", "dev"), sub.Parameters[0])
	})
	t.Run("Should reject unknown parameter names", func(t *testing.T) {
		values := baseValues()
		values.Set("json", `{"parameter":[{"name":"ENV","value":"prod"},{"name":"UNKNOWN","value":"x"}]}`)
		_, err := uc.Execute(form.NewValuesDecoder(values), testProject(), "alice")
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Contains(t, err.Error(), "No such parameter definition: UNKNOWN")
	})
	t.Run("Should reject parameter entries without a name", func(t *testing.T) {
		values := baseValues()
		values.Set("json", `{"parameter":[{"value":"x"}]}`)
		sub, err := uc.Execute(form.NewValuesDecoder(values), testProject(), "alice")
		require.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Nil(t, sub)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "No such parameter definition: ", verr.Message)
	})
	t.Run("Should honor custom env var names", func(t *testing.T) {
		project := testProject()
		project.Release.ReleaseVersionEnvVar = "REL"
		project.Release.DevVersionEnvVar = "DEV"
		project.Release.DryRunEnvVar = "DRY"
		sub, err := uc.Execute(form.NewValuesDecoder(baseValues()), project, "alice")
		require.NoError(t, err)
		assert.Equal(t, "REL", sub.Parameters[0].Name)
		assert.Equal(t, "DEV", sub.Parameters[1].Name)
		assert.Equal(t, "DRY", sub.Parameters[2].Name)
	})
}

func TestBuildReleaseRequestUseCase_EncodingAgnostic(t *testing.T) {
	values := baseValues()
	values.Set(FieldCloseNexusStage, "on")
	values.Set(FieldRepoDescription, "Widgets:1.2")
	values.Set(FieldSpecifyScmCredentials, "on")
	values.Set(FieldScmUsername, "bob")
	values.Set(FieldScmPassword, "hunter2")
	values.Set(FieldSpecifyScmCommentPrefix, "on")
	values.Set(FieldScmCommentPrefix, "[release]")
	values.Set(FieldIsDryRun, "on")
	values.Set("json", `{"parameter":{"name":"ENV","value":"prod"}}`)

	uc := &BuildReleaseRequestUseCase{}
	standard, err := form.NewDecoder(standardRequest(values), nil)
	require.NoError(t, err)
	multi, err := form.NewDecoder(multipartRequest(t, values), nil)
	require.NoError(t, err)
	require.Equal(t, form.EncodingStandard, standard.Encoding())
	require.Equal(t, form.EncodingMultipart, multi.Encoding())

	fromStandard, err := uc.Execute(standard, testProject(), "alice")
	require.NoError(t, err)
	fromMultipart, err := uc.Execute(multi, testProject(), "alice")
	require.NoError(t, err)
	assert.Equal(t, fromStandard.Request, fromMultipart.Request)
	assert.Equal(t, fromStandard.Parameters, fromMultipart.Parameters)
}
