package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/simp-lee/admision/internal/domain"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Console  ConsoleConfig  `koanf:"console"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host      string          `koanf:"host"`
	Port      int             `koanf:"port"`
	Mode      string          `koanf:"mode"`
	Timeout   string          `koanf:"timeout"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver      string         `koanf:"driver"`
	AutoMigrate bool           `koanf:"auto_migrate"`
	SQLite      SQLiteConfig   `koanf:"sqlite"`
	Postgres    PostgresConfig `koanf:"postgres"`
	Pool        PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// ConsoleConfig holds settings for the terminal console that talks to the
// especialidades service.
type ConsoleConfig struct {
	BaseURL string `koanf:"base_url"`
	// RequestTimeout bounds each gateway call. Empty means no timeout.
	RequestTimeout string `koanf:"request_timeout"`
	SearchDebounce string `koanf:"search_debounce"`
	DefaultPerPage int    `koanf:"default_per_page"`
}

// Default console values applied by Validate when a field is left unset.
const (
	DefaultConsoleBaseURL        = "http://127.0.0.1:8080"
	DefaultConsoleSearchDebounce = "350ms"
	DefaultConsolePerPage        = 50
)

// RequestTimeoutDuration returns the parsed request timeout, or 0 when unset.
// Call after Validate.
func (c ConsoleConfig) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}

// SearchDebounceDuration returns the parsed search debounce delay.
// Call after Validate.
func (c ConsoleConfig) SearchDebounceDuration() time.Duration {
	d, _ := time.ParseDuration(c.SearchDebounce)
	return d
}

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and double-underscore as the
// hierarchy separator. Single underscores are preserved as part of the key name.
// For example, APP__SERVER__PORT=9090 overrides server.port and
// APP__DATABASE__POOL__MAX_IDLE_CONNS=20 overrides database.pool.max_idle_conns.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Load YAML config file.
	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	// Overlay environment variables with prefix APP__.
	// APP__SERVER__PORT -> server.port
	// APP__DATABASE__POOL__MAX_IDLE_CONNS -> database.pool.max_idle_conns
	if err := k.Load(env.Provider("APP__", ".", func(s string) string {
		key := strings.TrimPrefix(s, "APP__")
		key = strings.ToLower(key)
		key = strings.ReplaceAll(key, "__", ".")
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate normalizes the configuration in place and reports the first
// invalid field, naming it by its YAML path.
func (c *Config) Validate() error {
	for _, validate := range []func() error{
		c.Server.validate,
		c.Database.validate,
		c.validateReleaseSSL,
		c.Log.validate,
		c.Console.validate,
	} {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s *ServerConfig) validate() error {
	mode, err := oneOf("server.mode", s.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	if err != nil {
		return err
	}
	s.Mode = mode

	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", s.Port)
	}

	s.Host = strings.TrimSpace(s.Host)
	if s.Host == "" {
		return errors.New("server.host is required")
	}

	if _, err := optionalDuration("server.timeout", &s.Timeout); err != nil {
		return err
	}
	if _, err := optionalDuration("server.cors.max_age", &s.CORS.MaxAge); err != nil {
		return fmt.Errorf("%w (e.g. \"24h\", \"3600s\")", err)
	}

	if s.RateLimit.Enabled {
		if s.RateLimit.RPS <= 0 {
			return fmt.Errorf("invalid server.rate_limit.rps %v: must be positive when rate limiting is enabled", s.RateLimit.RPS)
		}
		if s.RateLimit.Burst <= 0 {
			return fmt.Errorf("invalid server.rate_limit.burst %d: must be positive when rate limiting is enabled", s.RateLimit.Burst)
		}
	}
	return nil
}

func (d *DatabaseConfig) validate() error {
	switch d.Driver {
	case "sqlite":
		d.SQLite.Path = strings.TrimSpace(d.SQLite.Path)
		if d.SQLite.Path == "" {
			return errors.New("database.sqlite.path is required when driver is sqlite")
		}
	case "postgres":
		if err := d.Postgres.validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q", d.Driver, "sqlite", "postgres")
	}

	_, err := optionalDuration("database.pool.conn_max_lifetime", &d.Pool.ConnMaxLifetime)
	return err
}

var (
	postgresSSLModes       = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}
	postgresSecureSSLModes = []string{"require", "verify-ca", "verify-full"}
)

func (p *PostgresConfig) validate() error {
	p.Host = strings.TrimSpace(p.Host)
	if p.Host == "" {
		return errors.New("database.postgres.host is required when driver is postgres")
	}
	if p.Port < 1 || p.Port > 65535 {
		return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", p.Port)
	}
	p.User = strings.TrimSpace(p.User)
	if p.User == "" {
		return errors.New("database.postgres.user is required when driver is postgres")
	}
	p.DBName = strings.TrimSpace(p.DBName)
	if p.DBName == "" {
		return errors.New("database.postgres.dbname is required when driver is postgres")
	}

	mode, err := oneOf("database.postgres.sslmode", p.SSLMode, postgresSSLModes...)
	if err != nil {
		return err
	}
	p.SSLMode = mode
	return nil
}

// validateReleaseSSL rejects unencrypted postgres connections in release mode.
func (c *Config) validateReleaseSSL() error {
	if c.Database.Driver != "postgres" || c.Server.Mode != gin.ReleaseMode {
		return nil
	}
	if _, err := oneOf("database.postgres.sslmode", c.Database.Postgres.SSLMode, postgresSecureSSLModes...); err != nil {
		return fmt.Errorf("%w (server.mode %q)", err, gin.ReleaseMode)
	}
	return nil
}

func (l *LogConfig) validate() error {
	level, err := oneOf("log.level", strings.ToLower(l.Level), "debug", "info", "warn", "error")
	if err != nil {
		return err
	}
	l.Level = level

	format, err := oneOf("log.format", strings.ToLower(l.Format), "text", "json")
	if err != nil {
		return err
	}
	l.Format = format
	return nil
}

// oneOf trims value and checks it against allowed.
func oneOf(field, value string, allowed ...string) (string, error) {
	v := strings.TrimSpace(value)
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	quoted := make([]string, len(allowed))
	for i, a := range allowed {
		quoted[i] = strconv.Quote(a)
	}
	return "", fmt.Errorf("invalid %s %q: must be one of %s", field, value, strings.Join(quoted, ", "))
}

// optionalDuration trims *v in place; whitespace-only means unset and yields
// zero. A set value must parse as a positive duration.
func optionalDuration(field string, v *string) (time.Duration, error) {
	*v = strings.TrimSpace(*v)
	if *v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, *v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be greater than 0", field, *v)
	}
	return d, nil
}

func (c *ConsoleConfig) validate() error {
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultConsoleBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid console.base_url %q: %w", c.BaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid console.base_url %q: must be an absolute http or https URL", c.BaseURL)
	}
	c.BaseURL = baseURL

	if _, err := optionalDuration("console.request_timeout", &c.RequestTimeout); err != nil {
		return err
	}

	c.SearchDebounce = strings.TrimSpace(c.SearchDebounce)
	if c.SearchDebounce == "" {
		c.SearchDebounce = DefaultConsoleSearchDebounce
	}
	d, err := time.ParseDuration(c.SearchDebounce)
	if err != nil {
		return fmt.Errorf("invalid console.search_debounce %q: %w", c.SearchDebounce, err)
	}
	if d < 0 {
		return fmt.Errorf("invalid console.search_debounce %q: must not be negative", c.SearchDebounce)
	}

	switch c.DefaultPerPage {
	case 0:
		c.DefaultPerPage = DefaultConsolePerPage
	case domain.PerPageSmall, domain.PerPageMedium, domain.PerPageLarge:
		// ok
	default:
		return fmt.Errorf("invalid console.default_per_page %d: must be one of %d, %d, %d",
			c.DefaultPerPage, domain.PerPageSmall, domain.PerPageMedium, domain.PerPageLarge)
	}

	return nil
}
