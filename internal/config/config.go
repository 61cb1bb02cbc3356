package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultSettingsFile     = "appsettings.json"
	defaultArtifactsDir     = "artifacts"
	defaultLogLevel         = "info"
	defaultChromeDriverPath = "chromedriver"
	defaultGeckoDriverPath  = "geckodriver"
	defaultEdgeDriverPath   = "msedgedriver"
)

// Config aggregates harness runtime configuration resolved from multiple
// sources. Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	SettingsFile string       `yaml:"settings_file"`
	RemoteURL    string       `yaml:"remote_url"`
	ArtifactsDir string       `yaml:"artifacts_dir"`
	LogLevel     string       `yaml:"log_level"`
	Driver       DriverConfig `yaml:"driver"`
}

// DriverConfig holds driver service process settings. A Port of 0 selects an
// ephemeral port per started service.
type DriverConfig struct {
	ChromeDriverPath string        `yaml:"chromedriver_path"`
	GeckoDriverPath  string        `yaml:"geckodriver_path"`
	EdgeDriverPath   string        `yaml:"edgedriver_path"`
	Port             int           `yaml:"port"`
	StartTimeout     time.Duration `yaml:"-"`
	PollInterval     time.Duration `yaml:"-"`
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	SettingsFile string           `yaml:"settings_file"`
	RemoteURL    string           `yaml:"remote_url"`
	ArtifactsDir string           `yaml:"artifacts_dir"`
	LogLevel     string           `yaml:"log_level"`
	Driver       yamlDriverConfig `yaml:"driver"`
}

// yamlDriverConfig represents the driver section in YAML.
type yamlDriverConfig struct {
	ChromeDriverPath string `yaml:"chromedriver_path"`
	GeckoDriverPath  string `yaml:"geckodriver_path"`
	EdgeDriverPath   string `yaml:"edgedriver_path"`
	Port             int    `yaml:"port"`
	StartTimeout     string `yaml:"start_timeout"`
	PollInterval     string `yaml:"poll_interval"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile   string
	SettingsFile *string
	RemoteURL    *string
	ArtifactsDir *string
	LogLevel     *string
	DriverPort   *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Load from YAML file if specified
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		applyYAMLConfig(&cfg, yamlCfg)
	}

	// Apply environment variables (override YAML)
	applyEnvConfig(&cfg)

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	// Validate final configuration
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		SettingsFile: defaultSettingsFile,
		ArtifactsDir: defaultArtifactsDir,
		LogLevel:     defaultLogLevel,
		Driver: DriverConfig{
			ChromeDriverPath: defaultChromeDriverPath,
			GeckoDriverPath:  defaultGeckoDriverPath,
			EdgeDriverPath:   defaultEdgeDriverPath,
			Port:             0,
			StartTimeout:     30 * time.Second,
			PollInterval:     time.Second,
		},
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) {
	if yamlCfg.SettingsFile != "" {
		cfg.SettingsFile = yamlCfg.SettingsFile
	}

	if yamlCfg.RemoteURL != "" {
		cfg.RemoteURL = yamlCfg.RemoteURL
	}

	if yamlCfg.ArtifactsDir != "" {
		cfg.ArtifactsDir = yamlCfg.ArtifactsDir
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	if yamlCfg.Driver.ChromeDriverPath != "" {
		cfg.Driver.ChromeDriverPath = yamlCfg.Driver.ChromeDriverPath
	}

	if yamlCfg.Driver.GeckoDriverPath != "" {
		cfg.Driver.GeckoDriverPath = yamlCfg.Driver.GeckoDriverPath
	}

	if yamlCfg.Driver.EdgeDriverPath != "" {
		cfg.Driver.EdgeDriverPath = yamlCfg.Driver.EdgeDriverPath
	}

	if yamlCfg.Driver.Port > 0 {
		cfg.Driver.Port = yamlCfg.Driver.Port
	}

	if yamlCfg.Driver.StartTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.Driver.StartTimeout); err == nil {
			cfg.Driver.StartTimeout = d
		}
	}

	if yamlCfg.Driver.PollInterval != "" {
		if d, err := time.ParseDuration(yamlCfg.Driver.PollInterval); err == nil {
			cfg.Driver.PollInterval = d
		}
	}
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if file := strings.TrimSpace(os.Getenv("SETTINGS_FILE")); file != "" {
		cfg.SettingsFile = file
	}

	if url := strings.TrimSpace(os.Getenv("SELENIUM_REMOTE_URL")); url != "" {
		cfg.RemoteURL = url
	}

	if dir := strings.TrimSpace(os.Getenv("ARTIFACTS_DIR")); dir != "" {
		cfg.ArtifactsDir = dir
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if port := strings.TrimSpace(os.Getenv("DRIVER_PORT")); port != "" {
		if value, err := strconv.Atoi(port); err == nil && value >= 0 {
			cfg.Driver.Port = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.SettingsFile != nil && *overrides.SettingsFile != "" {
		cfg.SettingsFile = *overrides.SettingsFile
	}

	if overrides.RemoteURL != nil && *overrides.RemoteURL != "" {
		cfg.RemoteURL = *overrides.RemoteURL
	}

	if overrides.ArtifactsDir != nil && *overrides.ArtifactsDir != "" {
		cfg.ArtifactsDir = *overrides.ArtifactsDir
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	if overrides.DriverPort != nil && *overrides.DriverPort >= 0 {
		cfg.Driver.Port = *overrides.DriverPort
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.SettingsFile == "" {
		return fmt.Errorf("settings file path cannot be empty")
	}
	if cfg.Driver.Port < 0 {
		return fmt.Errorf("DRIVER_PORT must be >= 0")
	}
	if cfg.Driver.StartTimeout <= 0 {
		return fmt.Errorf("driver start_timeout must be positive")
	}
	if cfg.Driver.PollInterval <= 0 {
		return fmt.Errorf("driver poll_interval must be positive")
	}
	return nil
}
