package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.BaseURL != "http://localhost:3000" {
			t.Errorf("expected base URL http://localhost:3000, got %s", config.API.BaseURL)
		}

		if config.API.TimeoutSeconds != 15 {
			t.Errorf("expected timeout 15, got %d", config.API.TimeoutSeconds)
		}

		if config.Database.Path != "./marquee.db" {
			t.Errorf("expected database path ./marquee.db, got %s", config.Database.Path)
		}

		if config.Client.RequestsPerSecond != 5.0 {
			t.Errorf("expected 5.0 requests per second, got %f", config.Client.RequestsPerSecond)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

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
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		content := `
[api]
base_url = "https://movies.example.com"
timeout_seconds = 30

[database]
path = "/tmp/test.db"
max_open_conns = 3
max_idle_conns = 1

[client]
requests_per_second = 2.5
burst = 4
`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "https://movies.example.com" {
			t.Errorf("expected base URL https://movies.example.com, got %s", config.API.BaseURL)
		}
		if config.Database.MaxOpenConns != 3 {
			t.Errorf("expected max_open_conns 3, got %d", config.Database.MaxOpenConns)
		}
		if config.Client.Burst != 4 {
			t.Errorf("expected burst 4, got %d", config.Client.Burst)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.toml"); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("LoadConfig Malformed TOML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := os.WriteFile(configPath, []byte("[api\nbase_url ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected error for malformed config file")
		}
	})
}
