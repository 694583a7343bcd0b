// Package config loads tally's settings from the environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

// Config holds the resolved configuration.
type Config struct {
	User         string
	Backend      string
	DBPath       string
	MySQLDSN     string
	LogLevel     slog.Level
	LogFile      string
	TickInterval time.Duration
}

// New returns a viper instance with tally's defaults and environment
// bindings. Every key can be overridden with TALLY_<KEY>.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("user", "default")
	v.SetDefault("backend", BackendSQLite)
	v.SetDefault("db_path", "~/.config/tally/tally.db")
	v.SetDefault("mysql_dsn", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "~/.config/tally/tally.log")
	v.SetDefault("tick_interval", time.Second)

	v.SetConfigName("config") // .yaml is implicit
	v.SetEnvPrefix("TALLY")
	v.AutomaticEnv()

	if override := os.Getenv("TALLY_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("$HOME/.config/tally")
	return v
}

// Load reads the config file if one exists and resolves v into a Config.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return Resolve(v)
}

// Resolve validates the values already present in v.
func Resolve(v *viper.Viper) (Config, error) {
	cfg := Config{
		User:         strings.TrimSpace(v.GetString("user")),
		Backend:      strings.ToLower(strings.TrimSpace(v.GetString("backend"))),
		MySQLDSN:     v.GetString("mysql_dsn"),
		TickInterval: v.GetDuration("tick_interval"),
	}
	if cfg.User == "" {
		cfg.User = "default"
	}

	switch cfg.Backend {
	case BackendSQLite, BackendMySQL:
	default:
		return cfg, fmt.Errorf("unknown backend %q (want %s or %s)", cfg.Backend, BackendSQLite, BackendMySQL)
	}
	if cfg.Backend == BackendMySQL && cfg.MySQLDSN == "" {
		return cfg, errors.New("TALLY_MYSQL_DSN is required for the mysql backend")
	}

	var err error
	if cfg.DBPath, err = expand(v.GetString("db_path")); err != nil {
		return cfg, fmt.Errorf("db_path: %w", err)
	}
	if cfg.LogFile, err = expand(v.GetString("log_file")); err != nil {
		return cfg, fmt.Errorf("log_file: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("log_level"))); err != nil {
		return cfg, fmt.Errorf("log_level: %w", err)
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	return cfg, nil
}

func expand(path string) (string, error) {
	if path == "" || path == ":memory:" {
		return path, nil
	}
	p, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(p), nil
}
