package ciutil

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/guto-escola/guto-api/internal/redact"
)

// Connection settings of the Postgres service container used in CI.
const (
	StandardCIUser     = "postgres"
	StandardCIPassword = "postgres"
	StandardCIPort     = "5432"
	StandardCIDatabase = "guto_test"
	StandardCIOptions  = "sslmode=disable"
)

// TestDatabaseURL returns the database URL for integration tests, read from
// GUTO_TEST_DATABASE_URL or DATABASE_URL. Under CI the URL is rewritten to
// the service container's credentials. The result is empty when no variable
// is set.
func TestDatabaseURL(logger *slog.Logger) string {
	dbURL := GetEnvWithFallbacks([]string{EnvTestDatabaseURL, EnvDatabaseURL}, "", logger)
	if dbURL == "" || !IsCI() {
		return dbURL
	}

	standardized, err := standardizeDatabaseURL(dbURL)
	if err != nil {
		if logger != nil {
			logger.Error("failed to standardize database URL",
				slog.String("error", redact.Error(err)))
		}
		return dbURL
	}
	if standardized != dbURL && logger != nil {
		logger.Info("standardized database URL for CI",
			slog.String("url", redact.String(standardized)))
	}
	return standardized
}

// standardizeDatabaseURL applies the CI credentials and fills in the port,
// database name and options when the URL leaves them out. Non-postgres URLs
// are returned unchanged.
func standardizeDatabaseURL(dbURL string) (string, error) {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}
	if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
		return dbURL, nil
	}

	out := *parsed
	out.User = url.UserPassword(StandardCIUser, StandardCIPassword)

	host := parsed.Hostname()
	if parsed.Port() == "" && (host == "" || host == "localhost" || host == "127.0.0.1") {
		if host == "" {
			host = "localhost"
		}
		out.Host = host + ":" + StandardCIPort
	}
	if strings.TrimPrefix(parsed.Path, "/") == "" {
		out.Path = "/" + StandardCIDatabase
	}
	if parsed.RawQuery == "" {
		out.RawQuery = StandardCIOptions
	}
	return out.String(), nil
}
