// Package config loads the insights service configuration from YAML with
// environment variable overrides.
//
// .env files are loaded before overrides are applied: ENV_FILE if set,
// otherwise .env.local then .env. Any field with an `env:"NAME"` tag is
// replaced by the variable's value when it is set.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "config.yml"

// Config holds all configuration for the insights service.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Database DatabaseConfig `yaml:"database"`
	Data     DataConfig     `yaml:"data"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServiceConfig holds HTTP service settings. QueryTimeout defaults to 10s
// when unset; a negative value disables the bound.
type ServiceConfig struct {
	Name            string        `yaml:"name"`
	Port            int           `yaml:"port" env:"INSIGHTS_PORT"`
	QueryTimeout    time.Duration `yaml:"query_timeout" env:"INSIGHTS_QUERY_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig locates the record store.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"INSIGHTS_DB_PATH"`
}

// DataConfig controls the seed import.
type DataConfig struct {
	SeedFile      string `yaml:"seed_file" env:"INSIGHTS_SEED_FILE"`
	ImportOnStart bool   `yaml:"import_on_start" env:"INSIGHTS_IMPORT_ON_START"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" env:"LOG_LEVEL"`
	Development bool   `yaml:"development" env:"APP_DEBUG"`
}

// Load reads path, applies defaults, then environment overrides. A missing
// file is not an error: defaults and the environment still apply.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}
	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// GetConfigPath returns CONFIG_PATH or defaultPath.
func GetConfigPath(defaultPath string) string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return defaultPath
}

func setDefaults(cfg *Config) {
	if cfg.Service.Name == "" {
		cfg.Service.Name = "insights"
	}
	if cfg.Service.Port == 0 {
		cfg.Service.Port = 5332
	}
	if cfg.Service.QueryTimeout == 0 {
		cfg.Service.QueryTimeout = 10 * time.Second
	}
	if cfg.Service.ShutdownTimeout == 0 {
		cfg.Service.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "insights.db"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs error
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		errs = multierr.Append(errs, fmt.Errorf("service.port must be between 1 and 65535, got %d", c.Service.Port))
	}
	if c.Database.Path == "" {
		errs = multierr.Append(errs, errors.New("database.path is required"))
	}
	if c.Data.ImportOnStart && c.Data.SeedFile == "" {
		errs = multierr.Append(errs, errors.New("data.seed_file is required when data.import_on_start is set"))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		errs = multierr.Append(errs, fmt.Errorf("logging.level %q is not a known level", c.Logging.Level))
	}
	return errs
}

// loadEnvFiles loads ENV_FILE if set, otherwise .env.local then .env.
// Missing files are ignored.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	if err := godotenv.Load(".env.local"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env.local: %w", err)
	}
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// applyEnvOverrides walks cfg and sets every `env`-tagged field whose
// variable is non-empty. Values that do not parse are all reported.
func applyEnvOverrides(cfg any) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	return applyEnvToStruct(v)
}

func applyEnvToStruct(v reflect.Value) error {
	if v.Kind() != reflect.Struct {
		return nil
	}
	var errs error
	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct {
			errs = multierr.Append(errs, applyEnvToStruct(field))
			continue
		}
		name := t.Field(i).Tag.Get("env")
		if name == "" {
			continue
		}
		if val := os.Getenv(name); val != "" {
			if err := setFieldFromString(field, val); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s=%q: %w", name, val, err))
			}
		}
	}
	return errs
}

func setFieldFromString(field reflect.Value, val string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)
	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(strings.TrimSpace(val))
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(i)
	case reflect.Bool:
		s := strings.ToLower(strings.TrimSpace(val))
		field.SetBool(s == "true" || s == "1" || s == "yes")
	}
	return nil
}
