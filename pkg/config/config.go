// Package config handles loading, validating and saving the application
// configuration: which backends are enabled and where their data lives, the
// stats endpoints, and general settings. YAML on disk, sensible defaults for
// everything.
package config

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/mwelte/appgrid/pkg/errors"
	"github.com/mwelte/appgrid/pkg/fsutil"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Backends Backends `yaml:"backends"`
	Stats    Stats    `yaml:"stats"`
	Settings Settings `yaml:"settings"`
}

// Backends configures the catalog backends.
type Backends struct {
	FlatpakUser   Flatpak `yaml:"flatpak_user"`
	FlatpakSystem Flatpak `yaml:"flatpak_system"`
	System        System  `yaml:"system"`
}

// Flatpak configures one flatpak installation.
type Flatpak struct {
	Enabled bool   `yaml:"enabled"`
	Root    string `yaml:"root,omitempty"`
}

// System configures the distro package backend.
type System struct {
	Enabled     bool   `yaml:"enabled"`
	CatalogDir  string `yaml:"catalog_dir,omitempty"`
	InstalledDB string `yaml:"installed_db,omitempty"`
}

// Stats configures the popularity/compatibility endpoints.
type Stats struct {
	DownloadsURL     string `yaml:"downloads_url"`
	CompatibilityURL string `yaml:"compatibility_url"`
	MetadataURL      string `yaml:"metadata_url"`
}

// Settings represents general application settings.
type Settings struct {
	CacheDir    string `yaml:"cache_dir,omitempty"`
	CurationDir string `yaml:"curation_dir,omitempty"`

	// OSCodename overrides the detected release codename used for origin
	// filtering. Empty means auto-detect from os-release.
	OSCodename string `yaml:"os_codename,omitempty"`

	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	MaxConcurrent int           `yaml:"max_concurrent_fetches"`
	PageSize      int           `yaml:"page_size"`

	OutputFormat string `yaml:"output_format"` // text, json
	LogLevel     string `yaml:"log_level"`     // error, warn, info, debug
}

// Default configuration values.
const (
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultMaxConcurrent = 4
	DefaultPageSize      = 100

	defaultDownloadsURL     = "https://stats.appgrid.dev/downloads.json"
	defaultCompatibilityURL = "https://stats.appgrid.dev/compatibility.json"
	defaultMetadataURL      = "https://stats.appgrid.dev/metadata.json"

	yamlIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		configDir = "."
	}

	return &Config{
		Backends: Backends{
			FlatpakUser: Flatpak{
				Enabled: true,
				Root:    filepath.Join(home, ".local", "share", "flatpak"),
			},
			FlatpakSystem: Flatpak{
				Enabled: true,
				Root:    "/var/lib/flatpak",
			},
			System: System{
				Enabled:     true,
				CatalogDir:  filepath.Join(configDir, "catalogs"),
				InstalledDB: filepath.Join(configDir, "installed.json"),
			},
		},
		Stats: Stats{
			DownloadsURL:     defaultDownloadsURL,
			CompatibilityURL: defaultCompatibilityURL,
			MetadataURL:      defaultMetadataURL,
		},
		Settings: Settings{
			CurationDir:   filepath.Join(configDir, "pages"),
			HTTPTimeout:   DefaultHTTPTimeout,
			MaxConcurrent: DefaultMaxConcurrent,
			PageSize:      DefaultPageSize,
			OutputFormat:  "text",
			LogLevel:      "info",
		},
	}
}

// GetDefaultConfigPath returns the default config file location.
func GetDefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve config directory")
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// LoadConfig loads configuration from a file. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig writes the configuration atomically: temp file, rename, chmod.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidPath, err.Error())
	}

	if err := fsutil.EnsureDir(filepath.Dir(absPath)); err != nil {
		return errors.Wrap(errors.ErrConfigWrite, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(errors.ErrConfigWrite, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(yamlIndent)
	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigWrite, err.Error())
	}
	return os.Chmod(absPath, fsutil.FileModeDefault)
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return data, nil
}

// applyDefaults fills unset fields from the default configuration.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Backends.FlatpakUser.Root == "" {
		c.Backends.FlatpakUser.Root = defaults.Backends.FlatpakUser.Root
	}
	if c.Backends.FlatpakSystem.Root == "" {
		c.Backends.FlatpakSystem.Root = defaults.Backends.FlatpakSystem.Root
	}
	if c.Backends.System.CatalogDir == "" {
		c.Backends.System.CatalogDir = defaults.Backends.System.CatalogDir
	}
	if c.Backends.System.InstalledDB == "" {
		c.Backends.System.InstalledDB = defaults.Backends.System.InstalledDB
	}
	if c.Stats.DownloadsURL == "" {
		c.Stats.DownloadsURL = defaults.Stats.DownloadsURL
	}
	if c.Stats.CompatibilityURL == "" {
		c.Stats.CompatibilityURL = defaults.Stats.CompatibilityURL
	}
	if c.Stats.MetadataURL == "" {
		c.Stats.MetadataURL = defaults.Stats.MetadataURL
	}
	if c.Settings.CurationDir == "" {
		c.Settings.CurationDir = defaults.Settings.CurationDir
	}
	if c.Settings.HTTPTimeout <= 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.MaxConcurrent <= 0 {
		c.Settings.MaxConcurrent = defaults.Settings.MaxConcurrent
	}
	if c.Settings.PageSize <= 0 {
		c.Settings.PageSize = defaults.Settings.PageSize
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	for _, raw := range []string{c.Stats.DownloadsURL, c.Stats.CompatibilityURL, c.Stats.MetadataURL} {
		if _, err := url.ParseRequestURI(raw); err != nil {
			return errors.Wrapf(errors.ErrConfigValidation, "invalid stats URL %q: %v", raw, err)
		}
	}
	switch c.Settings.OutputFormat {
	case "text", "json":
	default:
		return errors.Wrapf(errors.ErrConfigValidation, "unknown output format %q", c.Settings.OutputFormat)
	}
	switch c.Settings.LogLevel {
	case "error", "warn", "warning", "info", "debug":
	default:
		return errors.Wrapf(errors.ErrConfigValidation, "unknown log level %q", c.Settings.LogLevel)
	}
	if c.Backends.System.Enabled && c.Backends.System.CatalogDir == "" {
		return errors.Wrap(errors.ErrConfigValidation, "system backend enabled without catalog_dir")
	}
	return nil
}

// CacheDir resolves the configured cache directory, defaulting to the user
// cache dir.
func (c *Config) CacheDir() (string, error) {
	if c.Settings.CacheDir != "" {
		return c.Settings.CacheDir, nil
	}
	return fsutil.GetCacheDir()
}

// StatsURLs parses the configured stats endpoints.
func (c *Config) StatsURLs() (downloads, compatibility, metadata *url.URL, err error) {
	if downloads, err = url.Parse(c.Stats.DownloadsURL); err != nil {
		return nil, nil, nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}
	if compatibility, err = url.Parse(c.Stats.CompatibilityURL); err != nil {
		return nil, nil, nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}
	if metadata, err = url.Parse(c.Stats.MetadataURL); err != nil {
		return nil, nil, nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}
	return downloads, compatibility, metadata, nil
}
