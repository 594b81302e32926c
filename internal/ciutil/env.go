package ciutil

import (
	"log/slog"
	"os"

	"github.com/guto-escola/guto-api/internal/redact"
)

// Environment variables read by this package.
const (
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"
	EnvCircleCI      = "CIRCLECI"

	EnvTestDatabaseURL = "GUTO_TEST_DATABASE_URL"
	EnvDatabaseURL     = "DATABASE_URL"
)

// ciMarkers are set by the CI providers we run on.
var ciMarkers = []string{EnvCI, EnvGitHubActions, EnvGitLabCI, EnvJenkinsURL, EnvCircleCI}

// IsCI reports whether the process runs under a CI provider.
func IsCI() bool {
	for _, name := range ciMarkers {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// GetEnvWithFallbacks returns the value of the first non-empty variable in
// envVars, or defaultValue when none is set. Using any but the first name
// logs a warning.
func GetEnvWithFallbacks(envVars []string, defaultValue string, logger *slog.Logger) string {
	for i, name := range envVars {
		val := os.Getenv(name)
		if val == "" {
			continue
		}
		if i > 0 && logger != nil {
			logger.Warn("using fallback environment variable",
				slog.String("used_var", name),
				slog.String("preferred_var", envVars[0]),
				slog.String("value", redact.String(val)))
		}
		return val
	}
	return defaultValue
}
