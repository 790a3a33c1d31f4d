// Package config reads and writes the yatube TOML configuration file.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for yatube.
type Config struct {
	Addr    string        `toml:"addr"`
	BaseDir string        `toml:"base_dir"`
	LogDir  string        `toml:"log_dir"`
	Storage StorageConfig `toml:"storage"`
	Images  ImagesConfig  `toml:"images"`
	Cache   CacheConfig   `toml:"cache"`
	Feed    FeedConfig    `toml:"feed"`
}

// StorageConfig selects the storage backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StorageConfig struct {
	Type string `toml:"type"`           // "badger", "sqlite" or "memory"
	Path string `toml:"path,omitempty"` // directory for badger, file for sqlite
}

// ImagesConfig selects where uploaded post images are kept.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ImagesConfig struct {
	Type string `toml:"type"` // "filesystem", "memory" or "s3"

	// FileSystem-specific fields (only used when Type == "filesystem")
	Root string `toml:"root,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Prefix    string `toml:"s3_prefix,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3Endpoint  string `toml:"s3_endpoint,omitempty"`
	S3AccessKey string `toml:"s3_access_key,omitempty"`
	S3SecretKey string `toml:"s3_secret_key,omitempty"`
}

// CacheConfig configures the home feed cache.
type CacheConfig struct {
	Type     string   `toml:"type"` // "memory", "ristretto" or "none"
	TTL      Duration `toml:"ttl"`
	MaxItems int64    `toml:"max_items,omitempty"` // only used for type=ristretto
}

// FeedConfig holds feed presentation settings.
type FeedConfig struct {
	PerPage int `toml:"per_page"`
}

// Duration is a time.Duration written as a string ("20s") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultCacheTTL is how long the home feed stays cached.
const DefaultCacheTTL = 20 * time.Second

// NewConfig creates a new Config rooted at baseDir with default settings.
func NewConfig(baseDir string) *Config {
	return &Config{
		Addr:    ":8080",
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Storage: StorageConfig{
			Type: "badger",
			Path: filepath.Join(baseDir, "badger"),
		},
		Images: ImagesConfig{
			Type: "filesystem",
			Root: filepath.Join(baseDir, "media"),
		},
		Cache: CacheConfig{
			Type: "memory",
			TTL:  Duration{DefaultCacheTTL},
		},
		Feed: FeedConfig{
			PerPage: 10,
		},
	}
}

// applyDefaults fills zero values that the file left out.
func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.Feed.PerPage < 1 {
		c.Feed.PerPage = 10
	}
	if c.Cache.Type == "" {
		c.Cache.Type = "memory"
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL = Duration{DefaultCacheTTL}
	}
	if c.LogDir == "" && c.BaseDir != "" {
		c.LogDir = filepath.Join(c.BaseDir, "log")
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
