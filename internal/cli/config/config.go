package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mongoose-kitchen/mongoose/internal/database"
	"github.com/mongoose-kitchen/mongoose/internal/logging"
	"github.com/mongoose-kitchen/mongoose/internal/orm/dialect"
)

// Profiles selected by MONGOOSE_SERVER_ENV
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTesting     = "testing"
)

// Config represents the mongoose service configuration
type Config struct {
	Env      string          `mapstructure:"env"`
	Server   ServerConfig    `mapstructure:"server"`
	Database database.Config `mapstructure:"database"`
	Log      logging.Config  `mapstructure:"log"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
}

// Address returns host:port
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// envBindings keeps the variable names the kitchen has always been deployed
// with
var envBindings = map[string][]string{
	"env":               {"MONGOOSE_SERVER_ENV"},
	"database.url":      {"MONGOOSE_DATABASE_URL", "DATABASE_URL"},
	"database.user":     {"MONGOOSE_DATABASE_USER", "MYSQL_USER_NAME"},
	"database.password": {"MONGOOSE_DATABASE_PASSWORD", "MYSQL_PASSWORD"},
	"database.host":     {"MONGOOSE_DATABASE_HOST", "MYSQL_DB_HOST"},
	"database.port":     {"MONGOOSE_DATABASE_PORT", "MYSQL_DB_PORT"},
	"database.name":     {"MONGOOSE_DATABASE_NAME", "MYSQL_DB_NAME"},
}

// Load loads the configuration from mongoose.yaml in the working directory,
// or from path when it is not empty. A missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("mongoose")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Enable environment variable support
	v.SetEnvPrefix("MONGOOSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	applyProfile(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	db := database.DefaultConfig()

	v.SetDefault("env", EnvDevelopment)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 9001)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.max_body_size", 10<<20)

	v.SetDefault("database.driver", db.Driver)
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", db.Host)
	v.SetDefault("database.port", db.Port)
	v.SetDefault("database.user", db.User)
	v.SetDefault("database.password", db.Password)
	v.SetDefault("database.name", db.Name)
	v.SetDefault("database.probe_tables", false)
	v.SetDefault("database.max_open_conns", db.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", db.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", db.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", db.ConnMaxIdleTime)
	v.SetDefault("database.ping_timeout", db.PingTimeout)

	v.SetDefault("log.level", "")
}

// applyProfile swaps in the defaults of the selected profile. Values from
// the file or the environment still win.
func applyProfile(v *viper.Viper) {
	switch strings.ToLower(v.GetString("env")) {
	case EnvProduction:
		v.SetDefault("log.development", false)
		v.SetDefault("log.level", "info")
	case EnvTesting:
		v.SetDefault("log.development", true)
		v.SetDefault("log.level", "warn")
		v.SetDefault("database.probe_tables", true)
	default:
		v.SetDefault("log.development", true)
		v.SetDefault("log.level", "debug")
		v.SetDefault("database.probe_tables", true)
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	cfg.Env = strings.ToLower(cfg.Env)
	switch cfg.Env {
	case EnvProduction, EnvDevelopment, EnvTesting:
	default:
		return fmt.Errorf("env must be one of %s, %s, %s, got: %s", EnvProduction, EnvDevelopment, EnvTesting, cfg.Env)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", cfg.Server.Port)
	}
	if _, err := dialect.ForDriver(cfg.Database.Driver); err != nil {
		return fmt.Errorf("database.driver: %w", err)
	}
	if _, err := cfg.Database.DSN(); err != nil {
		return err
	}
	if cfg.Log.Level != "" {
		if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	return nil
}
