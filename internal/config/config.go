package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/searchkit"
)

// envPrefix namespaces every environment override, e.g. SEARCHKIT_ENGINE_HOST.
const envPrefix = "SEARCHKIT_"

// Config holds the searchkit gateway configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http" envPrefix:"HTTP_"`
	Engine   EngineConfig   `yaml:"engine" envPrefix:"ENGINE_"`
	Auth     AuthConfig     `yaml:"auth" envPrefix:"AUTH_"`
	Gateway  GatewayConfig  `yaml:"gateway" envPrefix:"GATEWAY_"`
	Mappings MappingsConfig `yaml:"mappings" envPrefix:"MAPPINGS_"`
	Logging  LoggingConfig  `yaml:"logging" envPrefix:"LOG_"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level" env:"LEVEL"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys" env:"API_KEYS" envSeparator:","`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port" env:"PORT"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec" env:"READ_TIMEOUT_SEC"`
	WriteTimeoutSec int `yaml:"write_timeout_sec" env:"WRITE_TIMEOUT_SEC"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec" env:"SHUTDOWN_TIMEOUT_SEC"`
}

// EngineConfig selects the engine driver and endpoint.
type EngineConfig struct {
	Driver     string `yaml:"driver" env:"DRIVER"` // opensearch, elasticsearch (default: opensearch)
	MaxRetries int    `yaml:"max_retries" env:"MAX_RETRIES"`

	// ReadinessTimeout bounds the startup ping loop.
	ReadinessTimeout int `yaml:"readiness_timeout_sec" env:"READINESS_TIMEOUT_SEC"`
	// RequiredIndices are reported by /health; a missing one degrades it.
	RequiredIndices []string `yaml:"required_indices" env:"REQUIRED_INDICES" envSeparator:","`

	Connection searchkit.ConnectionConfig `yaml:"connection"`
}

// GatewayConfig holds request limits of the HTTP gateway.
type GatewayConfig struct {
	DefaultPageSize int `yaml:"default_page_size" env:"DEFAULT_PAGE_SIZE"`
	MaxPageSize     int `yaml:"max_page_size" env:"MAX_PAGE_SIZE"`
	MaxBulkSize     int `yaml:"max_bulk_size" env:"MAX_BULK_SIZE"`
}

// MappingsConfig points at the directory mapping resources are read from.
type MappingsConfig struct {
	Dir string `yaml:"dir" env:"DIR"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod),
// then applies SEARCHKIT_* environment overrides. .env files are loaded first.
func Load(env string) (Config, error) {
	if err := loadEnvFiles(); err != nil {
		return Config{}, err
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return parse(data)
}

func parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	cfg := Config{Engine: EngineConfig{Connection: searchkit.DefaultConnectionConfig()}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Engine.Driver == "" {
		c.Engine.Driver = searchkit.DriverOpenSearch
	}
	if c.Engine.ReadinessTimeout <= 0 {
		c.Engine.ReadinessTimeout = 30
	}
	if c.Gateway.DefaultPageSize <= 0 {
		c.Gateway.DefaultPageSize = 20
	}
	if c.Gateway.MaxPageSize <= 0 {
		c.Gateway.MaxPageSize = searchkit.DefaultSearchSize
	}
	if c.Gateway.MaxBulkSize <= 0 {
		c.Gateway.MaxBulkSize = 1000
	}
	if c.Mappings.Dir == "" {
		c.Mappings.Dir = "."
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Engine.Driver {
	case searchkit.DriverOpenSearch, searchkit.DriverElasticsearch:
	default:
		return fmt.Errorf("engine.driver must be %q or %q, got %q",
			searchkit.DriverOpenSearch, searchkit.DriverElasticsearch, c.Engine.Driver)
	}
	if c.Engine.MaxRetries < 0 {
		return fmt.Errorf("engine.max_retries must not be negative, got %d", c.Engine.MaxRetries)
	}
	if err := c.Engine.Connection.Validate(); err != nil {
		return fmt.Errorf("engine.connection: %w", err)
	}
	if c.Gateway.DefaultPageSize > c.Gateway.MaxPageSize {
		return fmt.Errorf("gateway.default_page_size (%d) exceeds gateway.max_page_size (%d)",
			c.Gateway.DefaultPageSize, c.Gateway.MaxPageSize)
	}
	return nil
}

// loadEnvFiles loads ENV_FILE when set, otherwise .env.local then .env.
// Missing files are ignored; godotenv never overrides variables already set.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
