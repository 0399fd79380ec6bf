// Package config loads a2aflow configuration from YAML files with
// environment variable overrides.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("A2AFLOW").
//	    Load()
//
// Precedence: defaults, then the YAML file, then environment variables.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete a2aflow configuration.
type Config struct {
	// Server configures the demo agent server.
	Server ServerConfig `yaml:"server" env:"SERVER"`

	// Client configures the A2A client.
	Client ClientConfig `yaml:"client" env:"CLIENT"`

	// Poll configures the task polling loop.
	Poll PollConfig `yaml:"poll" env:"POLL"`

	// Log configures logging.
	Log LogConfig `yaml:"log" env:"LOG"`
}

// ServerConfig configures the demo agent server.
type ServerConfig struct {
	// ListenAddr is the address the JSON-RPC endpoint binds to.
	ListenAddr string `yaml:"listen_addr" env:"LISTEN_ADDR"`
	// MetricsAddr is the address the Prometheus endpoint binds to.
	MetricsAddr string `yaml:"metrics_addr" env:"METRICS_ADDR"`
	// AgentName and AgentDescription fill the served agent card.
	AgentName        string `yaml:"agent_name" env:"AGENT_NAME"`
	AgentDescription string `yaml:"agent_description" env:"AGENT_DESCRIPTION"`
	// BaseURL is the externally visible URL put on the agent card.
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// ReadTimeout and WriteTimeout bound the HTTP server.
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// RequestTimeout bounds task execution.
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	// RateLimitRPS and RateLimitBurst bound the request rate. Zero RPS
	// disables rate limiting.
	RateLimitRPS   float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
}

// ClientConfig configures the A2A client.
type ClientConfig struct {
	// AgentURL is the base URL of the remote agent.
	AgentURL string `yaml:"agent_url" env:"AGENT_URL"`
	// Timeout bounds non-streaming requests.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// Headers are additional headers sent with every request, as
	// comma-separated key=value pairs in the environment.
	Headers map[string]string `yaml:"headers" env:"-"`
}

// PollConfig configures the task polling loop.
type PollConfig struct {
	// Interval is the fixed delay between polls.
	Interval time.Duration `yaml:"interval" env:"INTERVAL"`
	// MaxPolls bounds the number of tasks/get calls.
	MaxPolls int `yaml:"max_polls" env:"MAX_POLLS"`
	// HistoryLength is passed through to tasks/get.
	HistoryLength int `yaml:"history_length" env:"HISTORY_LENGTH"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format is json or console.
	Format string `yaml:"format" env:"FORMAT"`
	// OutputPaths are zap output paths.
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
}

// Loader loads configuration with a builder API.
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a loader with the default A2AFLOW env prefix.
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "A2AFLOW",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath sets the YAML config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator adds a validation hook run after loading.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load resolves the configuration: defaults, then the YAML file, then
// environment variables, then validators.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile merges the YAML file into cfg. A missing file is not an
// error, defaults apply.
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// loadFromEnv overrides cfg fields from environment variables.
func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv walks the struct recursively, joining env tags with
// underscores (e.g. A2AFLOW_SERVER_LISTEN_ADDR).
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

// setFieldValue parses value into the field's kind.
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// MustLoad loads the configuration and panics on failure.
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Validate checks the configuration for obviously broken values.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.ListenAddr == "" {
		errs = append(errs, "server listen_addr must not be empty")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "server request_timeout must be positive")
	}
	if c.Server.RateLimitRPS < 0 {
		errs = append(errs, "server rate_limit_rps must not be negative")
	}
	if c.Poll.Interval <= 0 {
		errs = append(errs, "poll interval must be positive")
	}
	if c.Poll.MaxPolls <= 0 {
		errs = append(errs, "poll max_polls must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
