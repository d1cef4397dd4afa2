package config

import "time"

// Config holds all server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// Snapshot backends for the client's local fallback store.
const (
	SnapshotBackendSQLite = "sqlite"
	SnapshotBackendRedis  = "redis"
	SnapshotBackendMemory = "memory"
)

// ClientConfig holds the settings used by the kanban command-line client.
type ClientConfig struct {
	BaseURL         string        `mapstructure:"base_url" validate:"required,url"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"gt=0"`
	SnapshotBackend string        `mapstructure:"snapshot_backend" validate:"required,oneof=sqlite redis memory"`
	SnapshotPath    string        `mapstructure:"snapshot_path" validate:"required_if=SnapshotBackend sqlite"`
	RedisAddr       string        `mapstructure:"redis_addr" validate:"required_if=SnapshotBackend redis"`
	SnapshotKey     string        `mapstructure:"snapshot_key" validate:"required"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}
