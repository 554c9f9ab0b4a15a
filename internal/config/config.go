package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChestnutLUO/chromium-certificate/internal/inspect"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	ApplicationsDir string `mapstructure:"applications_dir" yaml:"applications_dir"` // Directory to scan
	OtoolPath       string `mapstructure:"otool_path" yaml:"otool_path"`             // Dynamic library lister
	PlistBuddyPath  string `mapstructure:"plistbuddy_path" yaml:"plistbuddy_path"`   // Bundle identifier reader
	PlutilPath      string `mapstructure:"plutil_path" yaml:"plutil_path"`           // Raw plist value reader
	LogLevel        string `mapstructure:"log_level" yaml:"log_level"`
	LogFile         string `mapstructure:"log_file" yaml:"log_file"`
	Output          string `mapstructure:"output" yaml:"output"` // table, json or yaml
	Watch           bool   `mapstructure:"watch" yaml:"watch"`   // Rescan when the applications dir changes

	path string // File this config was loaded from, empty when defaults were used
}

const (
	configName = "config"
	configType = "yaml"
	envPrefix  = "CHROMIUM_CERT"
)

// Default returns the default configuration
func Default() *Config {
	return &Config{
		ApplicationsDir: "/Applications",
		OtoolPath:       inspect.DefaultOtoolPath,
		PlistBuddyPath:  inspect.DefaultPlistBuddyPath,
		PlutilPath:      inspect.DefaultPlutilPath,
		LogLevel:        "info",
		Output:          "table",
	}
}

// ConfigDir returns the directory containing config files
func ConfigDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "chromium-certificate")
}

// ConfigPath returns the path to the default config file
func ConfigPath() string {
	return filepath.Join(ConfigDir(), configName+"."+configType)
}

// Load reads configuration from file and environment.
// An explicit path must exist; otherwise a missing file means defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	v := viper.New()

	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.path = v.ConfigFileUsed()

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("applications_dir", cfg.ApplicationsDir)
	v.SetDefault("otool_path", cfg.OtoolPath)
	v.SetDefault("plistbuddy_path", cfg.PlistBuddyPath)
	v.SetDefault("plutil_path", cfg.PlutilPath)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("output", cfg.Output)
	v.SetDefault("watch", cfg.Watch)
}

// Path returns the file this config was loaded from, if any
func (c *Config) Path() string {
	return c.path
}

// Save writes the configuration to path, or the default location if empty
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	c.path = path
	return nil
}

// Validate checks values that cannot be fixed up by defaults
func (c *Config) Validate() error {
	if c.ApplicationsDir == "" {
		return errors.New("applications_dir must not be empty")
	}
	switch strings.ToLower(c.Output) {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format %q", c.Output)
	}
	return nil
}
