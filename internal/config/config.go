package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const ConfigFile = ".posts.yml"

// Defaults.
const (
	DefaultDriver      = "mongo"
	DefaultURI         = "mongodb://localhost:27017"
	DefaultPostgresURI = "postgres://localhost:5432/posts"
	DefaultDatabase    = "graphql"
	DefaultCollection  = "post"
	DefaultPath        = ".posts"
	DefaultPort        = 8080
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// Config holds the posts configuration.
type Config struct {
	Store StoreConfig `yaml:"store"`
	Port  int         `yaml:"port"`
	Seed  bool        `yaml:"seed"`
	Log   LogConfig   `yaml:"log"`

	// path is the file this configuration was read from, if any.
	path string
}

// StoreConfig selects and addresses the storage backend.
type StoreConfig struct {
	// Driver is one of file, mongo, sqlite or postgres.
	Driver     string `yaml:"driver"`
	URI        string `yaml:"uri,omitempty"`
	Database   string `yaml:"database,omitempty"`
	Collection string `yaml:"collection,omitempty"`
	// Path is the directory (file) or database file (sqlite). Relative
	// paths are resolved against the configuration file's directory.
	Path     string `yaml:"path,omitempty"`
	IDLength int    `yaml:"id_length,omitempty"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:     DefaultDriver,
			URI:        DefaultURI,
			Database:   DefaultDatabase,
			Collection: DefaultCollection,
			Path:       DefaultPath,
		},
		Port: DefaultPort,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// FindConfig searches for ConfigFile starting from dir and walking up the
// directory tree. Returns "" if none is found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		path := filepath.Join(dir, ConfigFile)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load reads configuration from path, filling in defaults for missing
// values. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.path = path

	// Apply defaults for values the file blanked out
	def := Default()
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = def.Store.Driver
	}
	if cfg.Store.Database == "" {
		cfg.Store.Database = def.Store.Database
	}
	if cfg.Store.Collection == "" {
		cfg.Store.Collection = def.Store.Collection
	}
	if cfg.Port == 0 {
		cfg.Port = def.Port
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}

	return cfg, nil
}

// LoadFromDirectory finds the nearest configuration file above dir and
// loads it, falling back to defaults.
func LoadFromDirectory(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// ApplyEnv overrides configuration values from POSTS_* environment
// variables, using lookup (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("POSTS_STORE_DRIVER", &c.Store.Driver)
	str("POSTS_STORE_URI", &c.Store.URI)
	str("POSTS_STORE_DATABASE", &c.Store.Database)
	str("POSTS_STORE_PATH", &c.Store.Path)
	str("POSTS_LOG_LEVEL", &c.Log.Level)

	if v, ok := lookup("POSTS_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			errs = append(errs, fmt.Errorf("POSTS_PORT: invalid port %q", v))
		} else {
			c.Port = port
		}
	}
	if v, ok := lookup("POSTS_SEED"); ok && v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("POSTS_SEED: %w", err))
		} else {
			c.Seed = seed
		}
	}

	return errors.Join(errs...)
}

// ApplyDriverDefaults replaces the mongo default URI when another driver is
// selected: postgres gets DefaultPostgresURI, file and sqlite need none.
// A URI set explicitly is left alone.
func (c *Config) ApplyDriverDefaults() {
	if c.Store.URI != DefaultURI && c.Store.URI != "" {
		return
	}
	switch c.Store.Driver {
	case "mongo":
		c.Store.URI = DefaultURI
	case "postgres":
		c.Store.URI = DefaultPostgresURI
	case "file", "sqlite":
		c.Store.URI = ""
	}
}

// Validate checks values that can't be defaulted.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	return c.Store.validateURI()
}

// validateURI checks that the URI scheme fits the driver.
func (s StoreConfig) validateURI() error {
	scheme, _, hasScheme := strings.Cut(s.URI, "://")

	switch s.Driver {
	case "mongo":
		if scheme != "mongodb" && scheme != "mongodb+srv" {
			return fmt.Errorf("store.uri for mongo must start with mongodb:// or mongodb+srv://, got %q", s.Redacted())
		}
	case "postgres":
		// pgx also accepts keyword/value strings ("host=... dbname=...").
		if s.URI == "" || (hasScheme && scheme != "postgres" && scheme != "postgresql") {
			return fmt.Errorf("store.uri for postgres must be a postgres:// URL or keyword/value string, got %q", s.Redacted())
		}
	}
	return nil
}

// Path returns the file the configuration was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

// ResolvePath returns the store path, resolved relative to the directory of
// the configuration file (or the working directory without one).
func (c *Config) ResolvePath() string {
	p := c.Store.Path
	if p == "" || filepath.IsAbs(p) || c.path == "" {
		return p
	}
	return filepath.Join(filepath.Dir(c.path), p)
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	c.path = path
	return nil
}

// Redacted returns the store URI with any password replaced, for logging.
func (s StoreConfig) Redacted() string {
	scheme, rest, ok := strings.Cut(s.URI, "://")
	if !ok {
		return s.URI
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return s.URI
	}
	if user, _, hasPass := strings.Cut(creds, ":"); hasPass {
		return scheme + "://" + user + ":xxxxx@" + host
	}
	return s.URI
}
