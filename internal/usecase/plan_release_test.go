package usecase

import (
	"testing"

	"github.com/compozy/m2release/internal/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestVersionPlanner_ComputeReleaseVersion(t *testing.T) {
	planner := NewVersionPlanner(nil)
	t.Run("Should strip snapshot suffix from parseable versions", func(t *testing.T) {
		for _, v := range []string{"1.2-SNAPSHOT", "0.0.1-SNAPSHOT", "2.10.3-SNAPSHOT", "1.0-beta-1-SNAPSHOT"} {
			assert.Equal(t, v[:len(v)-len(domain.SnapshotSuffix)], planner.ComputeReleaseVersion(v), v)
		}
	})
	t.Run("Should return NaN for blank version", func(t *testing.T) {
		assert.Equal(t, "NaN", planner.ComputeReleaseVersion(""))
		assert.Equal(t, "NaN", planner.ComputeReleaseVersion("   "))
	})
	t.Run("Should strip literal suffix when version cannot be parsed", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		planner := NewVersionPlanner(zap.New(core))
		assert.Equal(t, "banana", planner.ComputeReleaseVersion("banana-SNAPSHOT"))
		assert.Equal(t, 1, logs.Len())
	})
}

func TestVersionPlanner_ComputeNextDevelopmentVersion(t *testing.T) {
	planner := NewVersionPlanner(nil)
	t.Run("Should increment and re-apply the snapshot suffix", func(t *testing.T) {
		cases := map[string]string{
			"1.2-SNAPSHOT":        "1.3-SNAPSHOT",
			"1.2.3-SNAPSHOT":      "1.2.4-SNAPSHOT",
			"1.0-beta-1-SNAPSHOT": "1.0-beta-2-SNAPSHOT",
			"2.0":                 "2.1-SNAPSHOT",
		}
		for current, want := range cases {
			got := planner.ComputeNextDevelopmentVersion(current)
			assert.Equal(t, want, got, current)
			cmp, err := domain.CompareVersions(got, planner.ComputeReleaseVersion(current))
			if err == nil {
				assert.Equal(t, 1, cmp, current)
			}
		}
	})
	t.Run("Should return sentinel for blank version", func(t *testing.T) {
		assert.Equal(t, "NaN-SNAPSHOT", planner.ComputeNextDevelopmentVersion(""))
	})
	t.Run("Should return sentinel instead of stripping unparsable versions", func(t *testing.T) {
		assert.Equal(t, "NaN-SNAPSHOT", planner.ComputeNextDevelopmentVersion("banana-SNAPSHOT"))
	})
	t.Run("Should return sentinel when a component overflows", func(t *testing.T) {
		assert.Equal(t, "NaN-SNAPSHOT", planner.ComputeNextDevelopmentVersion("1.99999999999-SNAPSHOT"))
	})
}

func TestVersionPlanner_ComputeDefaultTagName(t *testing.T) {
	planner := NewVersionPlanner(nil)
	t.Run("Should use placeholder without artifact id", func(t *testing.T) {
		assert.Equal(t, "M2RELEASE-TAG-1.2", planner.ComputeDefaultTagName(nil, "1.2"))
	})
	t.Run("Should prefix the artifact id", func(t *testing.T) {
		id := "my-artifact"
		assert.Equal(t, "my-artifact-1.2", planner.ComputeDefaultTagName(&id, "1.2"))
	})
}

func TestVersionPlanner_Plan(t *testing.T) {
	planner := NewVersionPlanner(nil)
	t.Run("Should derive the form defaults from the root module", func(t *testing.T) {
		project := &domain.Project{
			Name: "widgets",
			RootModule: &domain.Module{
				ArtifactID: "widgets-parent",
				Name:       "Widgets Parent",
				Version:    "3.1-SNAPSHOT",
			},
			Release: domain.ReleaseSettings{NexusSupport: true, SelectScmCredentials: true},
		}
		view := planner.Plan(project)
		assert.Equal(t, domain.VersionTriple{
			CurrentVersion:         "3.1-SNAPSHOT",
			ReleaseVersion:         "3.1",
			NextDevelopmentVersion: "3.2-SNAPSHOT",
			ScmTagName:             "widgets-parent-3.1",
		}, view.Versions)
		assert.Equal(t, "Widgets Parent:3.1", view.RepoDescription)
		assert.True(t, view.NexusSupportEnabled)
		assert.True(t, view.SelectScmCredentials)
		assert.False(t, view.SelectCustomScmTag)
		assert.Equal(t, domain.Permalinks(), view.Permalinks)
	})
	t.Run("Should preselect custom tag without root module", func(t *testing.T) {
		view := planner.Plan(&domain.Project{Name: "bare"})
		assert.True(t, view.SelectCustomScmTag)
		assert.Equal(t, "NaN", view.Versions.ReleaseVersion)
		assert.Equal(t, "NaN-SNAPSHOT", view.Versions.NextDevelopmentVersion)
		assert.Equal(t, "M2RELEASE-TAG-NaN", view.Versions.ScmTagName)
		assert.Empty(t, view.RepoDescription)
	})
}
