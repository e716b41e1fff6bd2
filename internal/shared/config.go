package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
	Sources  SourcesConfig  `toml:"sources"`
	Order    OrderConfig    `toml:"order"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig controls the level and destination of log output.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// SourcesConfig holds base URLs and limits for the remote decklist and card data sites.
type SourcesConfig struct {
	CubeCobraURL        string `toml:"cubecobra_url"`
	MTGGoldfishURL      string `toml:"mtggoldfish_url"`
	MoxfieldAPIURL      string `toml:"moxfield_api_url"`
	ScryfallURL         string `toml:"scryfall_url"`
	UserAgent           string `toml:"user_agent"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
	TokenTimeoutSeconds int    `toml:"token_timeout_seconds"`
	ScryfallRateMS      int    `toml:"scryfall_rate_ms"`
}

// OrderConfig contains defaults for print order files.
type OrderConfig struct {
	GenericTokens []string `toml:"generic_tokens"`
}

// Timeout returns the decklist download timeout.
func (s SourcesConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// TokenTimeout returns the per-card token lookup timeout.
func (s SourcesConfig) TokenTimeout() time.Duration {
	return time.Duration(s.TokenTimeoutSeconds) * time.Second
}

// ScryfallInterval returns the minimum spacing between token lookups.
func (s SourcesConfig) ScryfallInterval() time.Duration {
	return time.Duration(s.ScryfallRateMS) * time.Millisecond
}

// Validate rejects negative limits and missing source URLs.
func (c *Config) Validate() error {
	switch {
	case c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0:
		return fmt.Errorf("%w: connection pool sizes must not be negative", ErrInvalidConfig)
	case c.Sources.TimeoutSeconds < 0 || c.Sources.TokenTimeoutSeconds < 0 || c.Sources.ScryfallRateMS < 0:
		return fmt.Errorf("%w: timeouts and rate limits must not be negative", ErrInvalidConfig)
	case c.Sources.CubeCobraURL == "" || c.Sources.MTGGoldfishURL == "" || c.Sources.MoxfieldAPIURL == "":
		return fmt.Errorf("%w: decklist source URLs must be set", ErrInvalidConfig)
	case c.Sources.ScryfallURL == "":
		return fmt.Errorf("%w: scryfall_url must be set", ErrInvalidConfig)
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// DatabasePath returns the configured database path, or proxy.db in the app data directory when unset.
func (c *Config) DatabasePath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	return DefaultDatabasePath()
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ResolveConfig loads the first config file found, in order: path (when not empty),
// ./config.toml, then config.toml in [AppDataDir]. Defaults are returned when none exist.
func ResolveConfig(path string) (*Config, string, error) {
	candidates := []string{}
	if path != "" {
		candidates = append(candidates, path)
	}
	candidates = append(candidates, "config.toml")
	if dir, err := AppDataDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "config.toml"))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		config, err := LoadConfig(candidate)
		if err != nil {
			return nil, candidate, err
		}
		return config, candidate, nil
	}

	if path != "" {
		return nil, path, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	return DefaultConfig(), "", nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
