package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from an optional YAML file and the environment.
// Environment variables use the AUTH prefix with underscores, e.g.
// AUTH_JWT_SECRET, AUTH_DATABASE_HOST.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("AUTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing file is fine, the environment alone is a valid source.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret must be configured (AUTH_JWT_SECRET)")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.request_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "auth")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.conn_max_life", "30m")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.migration_dir", "migrations")

	// AutomaticEnv only feeds Unmarshal for keys viper already knows, so the
	// secret needs an (empty) default even though the value must come from
	// the file or AUTH_JWT_SECRET.
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_token_ttl", "900s")
	v.SetDefault("jwt.refresh_token_ttl", "604800s")
	v.SetDefault("jwt.refresh_token_byte_length", 32)

	v.SetDefault("security.password_hash.memory", 64*1024)
	v.SetDefault("security.password_hash.iterations", 3)
	v.SetDefault("security.password_hash.parallelism", 4)
	v.SetDefault("security.password_hash.salt_length", 16)
	v.SetDefault("security.password_hash.key_length", 32)
	v.SetDefault("security.token_cleanup_schedule", "@hourly")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("metrics.enabled", true)
}
