package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "" {
			t.Errorf("expected empty database path, got %s", config.Database.Path)
		}

		if config.Sources.MoxfieldAPIURL != "https://api2.moxfield.com" {
			t.Errorf("expected moxfield api url https://api2.moxfield.com, got %s", config.Sources.MoxfieldAPIURL)
		}

		if config.Sources.Timeout() != 30*time.Second {
			t.Errorf("expected 30s timeout, got %v", config.Sources.Timeout())
		}

		if config.Sources.TokenTimeout() != 10*time.Second {
			t.Errorf("expected 10s token timeout, got %v", config.Sources.TokenTimeout())
		}

		want := []string{"Treasure Token", "Beast Token", "Elemental Token"}
		if strings.Join(config.Order.GenericTokens, ",") != strings.Join(want, ",") {
			t.Errorf("expected generic tokens %v, got %v", want, config.Order.GenericTokens)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("DatabasePath", func(t *testing.T) {
		config := DefaultConfig()
		config.Database.Path = "/data/proxy.db"
		path, err := config.DatabasePath()
		if err != nil || path != "/data/proxy.db" {
			t.Errorf("expected configured path, got %q (%v)", path, err)
		}

		t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
		orig := getRuntime
		t.Cleanup(func() { getRuntime = orig })
		getRuntime = func() string { return "linux" }

		config.Database.Path = ""
		path, err = config.DatabasePath()
		if err != nil {
			t.Fatalf("DatabasePath failed: %v", err)
		}
		if path != filepath.Join("/tmp/xdg", AppName, "proxy.db") {
			t.Errorf("unexpected default path %q", path)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "nested", "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Sources.ScryfallURL != defaultConfig.Sources.ScryfallURL {
			t.Errorf("created config scryfall url doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/proxy.db"
max_open_conns = 4

[log]
level = "debug"

[sources]
scryfall_url = "http://localhost:9090"
timeout_seconds = 5

[order]
generic_tokens = ["Clue Token"]
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/proxy.db" {
			t.Errorf("expected database path /custom/proxy.db, got %s", config.Database.Path)
		}

		if config.Database.MaxIdleConns != 1 {
			t.Errorf("expected unset max_idle_conns to keep default 1, got %d", config.Database.MaxIdleConns)
		}

		if config.Sources.ScryfallURL != "http://localhost:9090" {
			t.Errorf("expected scryfall url override, got %s", config.Sources.ScryfallURL)
		}

		if config.Sources.CubeCobraURL != "https://www.cubecobra.com" {
			t.Errorf("expected default cubecobra url, got %s", config.Sources.CubeCobraURL)
		}

		if len(config.Order.GenericTokens) != 1 || config.Order.GenericTokens[0] != "Clue Token" {
			t.Errorf("expected generic tokens override, got %v", config.Order.GenericTokens)
		}
	})

	t.Run("LoadConfig rejects invalid values", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[sources]\ntimeout_seconds = -1\n"), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("ResolveConfig", func(t *testing.T) {
		t.Run("explicit missing path is an error", func(t *testing.T) {
			_, _, err := ResolveConfig(filepath.Join(t.TempDir(), "missing.toml"))
			if !errors.Is(err, ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})

		t.Run("explicit path wins", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "custom.toml")
			if err := os.WriteFile(configPath, []byte("[log]\nlevel = \"warn\"\n"), 0644); err != nil {
				t.Fatal(err)
			}
			config, used, err := ResolveConfig(configPath)
			if err != nil {
				t.Fatalf("ResolveConfig failed: %v", err)
			}
			if used != configPath || config.Log.Level != "warn" {
				t.Errorf("expected %s with warn level, got %s / %s", configPath, used, config.Log.Level)
			}
		})
	})
}
