package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	defaultServerURL    = "http://127.0.0.1:8000"
	defaultHomeCurrency = "TRY"

	appDirName     = "interchat"
	configFilename = "config.json"
	logFilename    = "interchat.log"
	prefsFilename  = "prefs.json"
)

// Config is the client configuration. Values come from, in order of
// precedence: environment variables, the config file in the data directory,
// and built-in defaults.
type Config struct {
	// ServerURL is the base URL of the remote conversation store.
	ServerURL string `json:"server_url"`
	// HomeCurrency is the default currency applied to transaction items that
	// arrive without one.
	HomeCurrency string `json:"home_currency"`
	// DataDir holds the config file, preference store, and log file.
	DataDir string `json:"-"`
	Debug   bool   `json:"-"`
}

// Load reads the configuration for the given data directory. An empty dataDir
// resolves to the user config directory. A missing config file is not an
// error.
func Load(dataDir string, debug bool) (*Config, error) {
	if dataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve user config dir: %w", err)
		}
		dataDir = filepath.Join(base, appDirName)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory %q: %w", dataDir, err)
	}

	cfg := &Config{
		ServerURL:    defaultServerURL,
		HomeCurrency: defaultHomeCurrency,
		DataDir:      dataDir,
		Debug:        debug,
	}

	path := filepath.Join(dataDir, configFilename)
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
		}
	}

	if v := os.Getenv("INTERCHAT_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("INTERCHAT_HOME_CURRENCY"); v != "" {
		cfg.HomeCurrency = v
	}

	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultServerURL
	}
	if cfg.HomeCurrency == "" {
		cfg.HomeCurrency = defaultHomeCurrency
	}

	return cfg, nil
}

// LogFile returns the path of the rotated log file.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, logFilename)
}

// PrefsFile returns the path of the durable preference store.
func (c *Config) PrefsFile() string {
	return filepath.Join(c.DataDir, prefsFilename)
}
