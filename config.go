package searchkit

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/kailas-cloud/searchkit/internal/db"
)

// ConnectionConfig describes one engine endpoint. It is a plain value; the
// client copies it at construction.
type ConnectionConfig struct {
	Scheme   string `yaml:"scheme" env:"SCHEME"`
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	Username string `yaml:"username" env:"USERNAME"`
	Password string `yaml:"password" env:"PASSWORD"`

	// UseSSL trusts every server certificate. Development clusters only.
	UseSSL bool `yaml:"use_ssl" env:"USE_SSL"`
	// UseBasicAuth attaches Username/Password when Username is not empty.
	UseBasicAuth bool `yaml:"use_basic_auth" env:"USE_BASIC_AUTH"`
}

// DefaultConnectionConfig points at a local engine on port 9200 with basic auth enabled.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		Scheme:       "http",
		Host:         "localhost",
		Port:         9200,
		UseBasicAuth: true,
	}
}

// Validate rejects configurations that cannot produce a working transport.
func (c ConnectionConfig) Validate() error {
	switch strings.ToLower(c.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidConfig, c.Scheme)
	}
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}
	if strings.ContainsAny(c.Host, "/ ") {
		return fmt.Errorf("%w: host must not contain a path or spaces: %q", ErrInvalidConfig, c.Host)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port out of range: %d", ErrInvalidConfig, c.Port)
	}
	if c.UseBasicAuth && c.Username == "" && c.Password != "" {
		return fmt.Errorf("%w: password given without username", ErrInvalidConfig)
	}
	return nil
}

// Address returns scheme://host:port.
func (c ConnectionConfig) Address() string {
	return strings.ToLower(c.Scheme) + "://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c ConnectionConfig) dbConfig() db.Config {
	out := db.Config{
		Addresses:   []string{c.Address()},
		InsecureTLS: c.UseSSL,
	}
	if c.UseBasicAuth && c.Username != "" {
		out.Username = c.Username
		out.Password = c.Password
	}
	return out
}

// String hides the password.
func (c ConnectionConfig) String() string {
	user := ""
	if c.UseBasicAuth && c.Username != "" {
		user = c.Username + ":***@"
	}
	return strings.ToLower(c.Scheme) + "://" + user + net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
