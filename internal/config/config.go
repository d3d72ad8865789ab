package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultLockTimeout bounds how long a mutation waits for a collection lock.
const DefaultLockTimeout = 5 * time.Second

// Config represents the main configuration for noticeboard.
type Config struct {
	InstanceID string         `toml:"instance_id"`
	BaseDir    string         `toml:"base_dir"`
	LogDir     string         `toml:"log_dir"`
	Storage    StorageConfig  `toml:"storage"`
	Server     ServerConfig   `toml:"server"`
	Security   SecurityConfig `toml:"security"`
}

// StorageConfig selects the record store backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StorageConfig struct {
	Type        string   `toml:"type"`               // "filesystem" or "memory"
	DataDir     string   `toml:"data_dir,omitempty"` // only used for type=filesystem
	LockTimeout Duration `toml:"lock_timeout"`       // bounded wait for the collection lock
}

// ServerConfig holds settings for the HTTP server.
type ServerConfig struct {
	Listen string `toml:"listen"`
}

// SecurityConfig holds session and password hashing settings.
type SecurityConfig struct {
	SessionSecret string `toml:"session_secret"`
	SecureCookie  bool   `toml:"secure_cookie"`   // set behind an HTTPS proxy
	SessionMaxAge int    `toml:"session_max_age"` // seconds
	BcryptCost    int    `toml:"bcrypt_cost"`     // 0 means bcrypt.DefaultCost
}

// Duration is a time.Duration that reads and writes as a string such as "5s".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// NewConfig creates a new Config with the provided values and default paths.
func NewConfig(instanceID, baseDir, sessionSecret string) *Config {
	return &Config{
		InstanceID: instanceID,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
		Storage: StorageConfig{
			Type:        "filesystem",
			DataDir:     filepath.Join(baseDir, "data"),
			LockTimeout: Duration{DefaultLockTimeout},
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8080",
		},
		Security: SecurityConfig{
			SessionSecret: sessionSecret,
			SessionMaxAge: 7 * 24 * 60 * 60,
		},
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

// writeToFile writes a Config to the specified file path.
// The file holds the session secret, so it is created owner-only.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
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
