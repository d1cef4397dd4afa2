package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load and LoadClient.
const EnvPrefix = "KANBAN"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := newViper()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime", "5m")

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadClient loads the client configuration from the "client" section of
// the same sources Load uses. configFile, when non-empty, replaces the
// default config.yaml lookup.
func LoadClient(configFile string) (*ClientConfig, error) {
	v := newViper()
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	v.SetDefault("client.base_url", "http://localhost:8080/api")
	v.SetDefault("client.timeout", "10s")
	v.SetDefault("client.snapshot_backend", SnapshotBackendSQLite)
	v.SetDefault("client.snapshot_path", "kanban.db")
	v.SetDefault("client.redis_addr", "")
	v.SetDefault("client.snapshot_key", "kanban-tasks")
	v.SetDefault("client.log_level", "warn")

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var wrapper struct {
		Client ClientConfig `mapstructure:"client"`
	}
	if err := v.Unmarshal(&wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal client config: %w", err)
	}

	cfg := wrapper.Client
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("client config validation failed: %w", err)
	}

	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// readConfigFile reads the config file if there is one. A missing file is not an error.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}
