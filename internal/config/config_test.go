package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()

	t.Setenv("SETTINGS_FILE", "")
	t.Setenv("SELENIUM_REMOTE_URL", "")
	t.Setenv("ARTIFACTS_DIR", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DRIVER_PORT", "")
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "harness.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.SettingsFile != defaultSettingsFile {
		t.Fatalf("expected default settings file %s, got %s", defaultSettingsFile, cfg.SettingsFile)
	}
	if cfg.RemoteURL != "" {
		t.Fatalf("expected no remote URL by default, got %s", cfg.RemoteURL)
	}
	if cfg.ArtifactsDir != defaultArtifactsDir {
		t.Fatalf("expected default artifacts dir %s, got %s", defaultArtifactsDir, cfg.ArtifactsDir)
	}
	if cfg.Driver.Port != 0 {
		t.Fatalf("expected ephemeral driver port by default, got %d", cfg.Driver.Port)
	}
	if cfg.Driver.StartTimeout != 30*time.Second {
		t.Fatalf("unexpected start timeout: %s", cfg.Driver.StartTimeout)
	}
	if cfg.Driver.PollInterval != time.Second {
		t.Fatalf("unexpected poll interval: %s", cfg.Driver.PollInterval)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SETTINGS_FILE", "custom.json")
	t.Setenv("SELENIUM_REMOTE_URL", "http://hub:4444/wd/hub")
	t.Setenv("DRIVER_PORT", "9515")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.SettingsFile != "custom.json" {
		t.Fatalf("expected overridden settings file, got %s", cfg.SettingsFile)
	}
	if cfg.RemoteURL != "http://hub:4444/wd/hub" {
		t.Fatalf("expected overridden remote URL, got %s", cfg.RemoteURL)
	}
	if cfg.Driver.Port != 9515 {
		t.Fatalf("expected overridden driver port, got %d", cfg.Driver.Port)
	}
}

func TestLoadYAMLConfig(t *testing.T) {
	clearEnv(t)

	path := writeConfigFile(t, strings.Join([]string{
		"settings_file: env/appsettings.json",
		"artifacts_dir: out/screens",
		"log_level: debug",
		"driver:",
		"  chromedriver_path: /opt/drivers/chromedriver",
		"  port: 4444",
		"  start_timeout: 10s",
		"  poll_interval: 250ms",
	}, "\n"))

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.SettingsFile != "env/appsettings.json" {
		t.Fatalf("expected YAML settings file, got %s", cfg.SettingsFile)
	}
	if cfg.ArtifactsDir != "out/screens" {
		t.Fatalf("expected YAML artifacts dir, got %s", cfg.ArtifactsDir)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected YAML log level, got %s", cfg.LogLevel)
	}
	if cfg.Driver.ChromeDriverPath != "/opt/drivers/chromedriver" {
		t.Fatalf("expected YAML chromedriver path, got %s", cfg.Driver.ChromeDriverPath)
	}
	if cfg.Driver.Port != 4444 {
		t.Fatalf("expected YAML driver port, got %d", cfg.Driver.Port)
	}
	if cfg.Driver.StartTimeout != 10*time.Second {
		t.Fatalf("expected YAML start timeout, got %s", cfg.Driver.StartTimeout)
	}
	if cfg.Driver.PollInterval != 250*time.Millisecond {
		t.Fatalf("expected YAML poll interval, got %s", cfg.Driver.PollInterval)
	}
}

func TestLoadBadDurationFallsBack(t *testing.T) {
	clearEnv(t)

	path := writeConfigFile(t, strings.Join([]string{
		"driver:",
		"  start_timeout: soon",
		"  poll_interval: 2s",
	}, "\n"))

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Driver.StartTimeout != 30*time.Second {
		t.Fatalf("expected unparsable start timeout to keep default, got %s", cfg.Driver.StartTimeout)
	}
	if cfg.Driver.PollInterval != 2*time.Second {
		t.Fatalf("expected parsed poll interval, got %s", cfg.Driver.PollInterval)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("SELENIUM_REMOTE_URL", "http://env:4444/wd/hub")
	t.Setenv("LOG_LEVEL", "warn")

	path := writeConfigFile(t, strings.Join([]string{
		"remote_url: http://yaml:4444/wd/hub",
		"log_level: debug",
	}, "\n"))

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.RemoteURL != "http://env:4444/wd/hub" {
		t.Fatalf("expected env remote URL to override YAML, got %s", cfg.RemoteURL)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected env log level to override YAML, got %s", cfg.LogLevel)
	}
}

func TestLoadCLIOverridesBeatEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SELENIUM_REMOTE_URL", "http://env:4444")
	t.Setenv("DRIVER_PORT", "1111")

	remote := "http://cli:4444"
	port := 2222
	cfg, err := Load(&CLIOverrides{RemoteURL: &remote, DriverPort: &port})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.RemoteURL != remote {
		t.Fatalf("expected CLI remote URL to win, got %s", cfg.RemoteURL)
	}
	if cfg.Driver.Port != port {
		t.Fatalf("expected CLI driver port to win, got %d", cfg.Driver.Port)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)

	if _, err := Load(&CLIOverrides{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")}); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoadRejectsInvalidTimeouts(t *testing.T) {
	clearEnv(t)

	path := writeConfigFile(t, "driver:\n  start_timeout: -5s\n")

	if _, err := Load(&CLIOverrides{ConfigFile: path}); err == nil {
		t.Fatalf("expected validation error for negative start timeout")
	}
}
