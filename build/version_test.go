package build

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestVersion checks the version string is semver shaped.
func TestVersion(t *testing.T) {
	t.Parallel()

	semver := regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)
	require.Regexp(t, semver, Version())
	require.NotEmpty(t, GoVersion())
}

// TestDeployment checks that exactly one deployment type is compiled in.
func TestDeployment(t *testing.T) {
	t.Parallel()

	require.NotEqual(t, IsProdBuild(), IsDevBuild())
	require.Contains(
		t, []string{"production", "development"}, Deployment.String(),
	)
	require.Equal(t, "unknown", DeploymentType(7).String())
}
