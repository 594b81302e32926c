package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Grading  GradingConfig  `mapstructure:"grading" validate:"required"`
	Rollbar  RollbarConfig  `mapstructure:"rollbar"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gt=0"`
}

// AuthConfig contains the settings used to validate bearer tokens.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lte=10080"`
}

// GradingConfig tunes the grading and enrollment rules.
type GradingConfig struct {
	// PendingReportLimit is how many pending grades the close-gradebook error
	// message lists before summarising the rest.
	PendingReportLimit int `mapstructure:"pending_report_limit" validate:"gt=0,lte=100"`
	DefaultCapacity    int `mapstructure:"default_capacity" validate:"gt=0,lte=50"`
}

// RollbarConfig enables forwarding of error logs to Rollbar. An empty token
// disables it.
type RollbarConfig struct {
	Token       string `mapstructure:"token"`
	Environment string `mapstructure:"environment" validate:"required_with=Token"`
	CodeVersion string `mapstructure:"code_version"`
}

// Enabled reports whether Rollbar reporting is configured.
func (c RollbarConfig) Enabled() bool {
	return c.Token != ""
}
