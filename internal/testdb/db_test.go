package testdb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/guto-escola/guto-api/internal/ciutil"
)

func clearCI(t *testing.T) {
	t.Helper()
	for _, name := range []string{ciutil.EnvCI, ciutil.EnvGitHubActions, ciutil.EnvGitLabCI, ciutil.EnvJenkinsURL, ciutil.EnvCircleCI} {
		t.Setenv(name, "")
	}
}

func TestGetTestDatabaseURL(t *testing.T) {
	clearCI(t)

	t.Run("prefers the dedicated variable", func(t *testing.T) {
		t.Setenv(EnvTestDatabaseURL, "postgres://test@localhost/guto_test")
		t.Setenv(EnvDatabaseURL, "postgres://app@localhost/guto")

		assert.Equal(t, "postgres://test@localhost/guto_test", GetTestDatabaseURL())
		assert.True(t, IsIntegrationTestEnvironment())
	})

	t.Run("falls back to DATABASE_URL", func(t *testing.T) {
		t.Setenv(EnvTestDatabaseURL, "")
		t.Setenv(EnvDatabaseURL, "postgres://app@localhost/guto")

		assert.Equal(t, "postgres://app@localhost/guto", GetTestDatabaseURL())
	})

	t.Run("empty when unset", func(t *testing.T) {
		t.Setenv(EnvTestDatabaseURL, "")
		t.Setenv(EnvDatabaseURL, "")

		assert.Empty(t, GetTestDatabaseURL())
		assert.False(t, IsIntegrationTestEnvironment())
	})
}
