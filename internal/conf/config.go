// config.go: This file contains the configuration for the phototag application.
// It defines the settings struct and functions to load and save the settings.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yaml
var configFiles embed.FS

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled    bool   // true to enable this log
	Path       string // path to log file
	MaxSizeMB  int    // max log size in MB before rotation
	MaxBackups int    // number of rotated logs to keep
	MaxAgeDays int    // days to keep rotated logs
}

// MainSettings contains general application settings
type MainSettings struct {
	Name string    // name of this node, used for identification
	Log  LogConfig // main log settings
}

// InputSettings contains settings for locating the image corpus
type InputSettings struct {
	Path       string   // path to images directory
	Recursive  bool     // true to scan subdirectories
	Extensions []string // accepted image file extensions
}

// VisionSettings contains settings for the remote detection service
type VisionSettings struct {
	Endpoint   string        // annotate endpoint URL
	APIKey     string        // API key for the vision service
	MaxResults int           // max results requested per feature
	Timeout    time.Duration // per-request timeout
	RateLimit  time.Duration // minimum delay between consecutive remote calls
	MaxRetries int           // retry cap for transient failures
	RetryDelay time.Duration // base delay for exponential backoff
	CacheTTL   time.Duration // TTL for the in-process annotate response cache
}

// ClassifySettings contains settings for the classification engine
type ClassifySettings struct {
	ConfidenceFloor float64 // minimum label confidence for equipment rule matches
	CountryFloor    float64 // minimum label confidence for country rule matches
	MaxKeywords     int     // upper bound on generated keywords
	RulesPath       string  // optional path to an external rule table, empty for built-in
	MinASCIIRatio   float64 // quality gate: minimum ASCII-alphabetic character ratio
}

// SyncSettings contains settings for the sync orchestrator
type SyncSettings struct {
	BatchSize int // number of classified records per commit batch
}

// SQLiteSettings contains settings for the SQLite database
type SQLiteSettings struct {
	Enabled bool   // true to enable SQLite
	Path    string // path to SQLite database file
}

// MySQLSettings contains settings for the MySQL database
type MySQLSettings struct {
	Enabled  bool   // true to enable MySQL
	Username string // MySQL username
	Password string // MySQL password
	Database string // MySQL database name
	Host     string // MySQL host
	Port     string // MySQL port
}

// OutputSettings contains settings for the record store backends
type OutputSettings struct {
	SQLite SQLiteSettings // SQLite database settings
	MySQL  MySQLSettings  // MySQL database settings
}

// Settings contains all configuration options for the phototag application
type Settings struct {
	Debug bool // true to enable debug mode

	Main     MainSettings
	Input    InputSettings
	Vision   VisionSettings
	Classify ClassifySettings
	Sync     SyncSettings
	Output   OutputSettings
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// Set default values for each configuration parameter
	// function defined in defaults.go
	setDefaultConfig()

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create config with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPaths returns the directories searched for config.yaml,
// in priority order: working directory first, then the user config directory.
func GetDefaultConfigPaths() ([]string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return []string{"."}, nil //nolint:nilerr // fall back to cwd only
	}
	return []string{".", filepath.Join(configDir, "phototag")}, nil
}

// createDefaultConfig creates a default config file and writes it to the default config path
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[len(configPaths)-1], "config.yaml")

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(getDefaultConfig()), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}
	return string(data)
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, initializing it if necessary
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			_, err := Load()
			if err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}
