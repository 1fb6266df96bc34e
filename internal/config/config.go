package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is the prefix of every environment variable read by Load.
	EnvPrefix = "CLIMATE_"
	// FileEnv names an optional YAML file layered under the environment.
	FileEnv = EnvPrefix + "CONFIG"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration

	Driver          string
	DSN             string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// LogSQL logs every statement at debug level. The logging connector
	// always wraps sqlite3, so it requires Driver to be "sqlite3".
	LogSQL bool
}

// rawConfig mirrors the koanf keys. Everything stays a string so that
// empty values fall back to defaults the same way for file and env sources.
type rawConfig struct {
	AppEnv          string `koanf:"app_env"`
	LogLevel        string `koanf:"log_level"`
	HTTPAddr        string `koanf:"http_addr"`
	ShutdownTimeout string `koanf:"shutdown_timeout"`
	Driver          string `koanf:"db_driver"`
	DSN             string `koanf:"db_dsn"`
	Path            string `koanf:"sqlite_path"`
	MaxOpenConns    string `koanf:"db_max_open_conns"`
	MaxIdleConns    string `koanf:"db_max_idle_conns"`
	ConnMaxLifetime string `koanf:"db_conn_max_lifetime"`
	LogSQL          string `koanf:"db_log_sql"`
}

// Load layers an optional YAML file (CLIMATE_CONFIG) and CLIMATE_* env vars,
// then applies defaults and validation. Env wins over the file.
func Load() (Config, error) {
	k := koanf.New(".")

	if path := strings.TrimSpace(os.Getenv(FileEnv)); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %q: %w", path, err)
		}
	}

	// Blank variables are skipped so they do not mask values from the file.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		if strings.TrimSpace(value) == "" {
			return "", nil
		}
		return strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var raw rawConfig
	if err := k.UnmarshalWithConf("", &raw, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return fromRaw(raw)
}

func fromRaw(raw rawConfig) (Config, error) {
	appEnv := orDefault(raw.AppEnv, "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid app_env %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(orDefault(raw.LogLevel, "info"))
	if err != nil {
		return Config{}, err
	}

	shutdownTimeout, err := parseDuration("shutdown_timeout", orDefault(raw.ShutdownTimeout, "10s"))
	if err != nil {
		return Config{}, err
	}
	if shutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("invalid shutdown_timeout %q: must be > 0", raw.ShutdownTimeout)
	}

	maxOpenConns, err := parseInt("db_max_open_conns", orDefault(raw.MaxOpenConns, "4"))
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := parseInt("db_max_idle_conns", orDefault(raw.MaxIdleConns, "4"))
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := parseDuration("db_conn_max_lifetime", orDefault(raw.ConnMaxLifetime, "0s"))
	if err != nil {
		return Config{}, err
	}

	logSQLStr := orDefault(raw.LogSQL, "false")
	logSQL, err := strconv.ParseBool(logSQLStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid db_log_sql %q: %w", logSQLStr, err)
	}

	return Config{
		AppEnv:          appEnv,
		LogLevel:        level,
		HTTPAddr:        orDefault(raw.HTTPAddr, ":8080"),
		ShutdownTimeout: shutdownTimeout,
		Driver:          orDefault(raw.Driver, "sqlite3"),
		DSN:             strings.TrimSpace(raw.DSN),
		Path:            orDefault(raw.Path, "data/hawaii.sqlite"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxLifetime: connMaxLifetime,
		LogSQL:          logSQL,
	}, nil
}

func orDefault(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

func parseInt(key, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func parseDuration(key, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q (allowed: debug, info, warn, error)", s)
	}
}
