package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage"  validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetimeMinutes is the access token lifetime. The default of
	// 43200 minutes matches the 30-day sessions the product expects.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// StorageConfig contains settings for the image attachment bucket.
type StorageConfig struct {
	Bucket string `mapstructure:"bucket" validate:"required"`

	// CredentialsFile is an optional path to a service account key.
	// When empty, application default credentials are used.
	CredentialsFile string `mapstructure:"credentials_file"`
}

// RedisConfig contains settings for the leaderboard snapshot cache.
// An empty Addr disables caching entirely.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// LeaderboardTTLSeconds bounds how stale a cached leaderboard may be.
	LeaderboardTTLSeconds int `mapstructure:"leaderboard_ttl_seconds"`
}
