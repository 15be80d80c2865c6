package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DefaultImageFilename is where the downloaded album art is
	// written when TUNEDISPLAY_IMAGE_FILENAME is unset.
	DefaultImageFilename = "lastfm_nowplaying_art.png"

	// MinPollInterval is the floor for the poll interval, to avoid
	// hammering the Last.fm API.
	MinPollInterval = 1 * time.Second

	defaultPollInterval = 3
	defaultOutputFormat = "{{.Artist}} - {{.Title}}"
)

// Config holds application configuration
type Config struct {
	// Output format template for the now command and text presenter
	// Default: "{{.Artist}} - {{.Title}}"
	OutputFormat string

	// Poll interval for the watch loop (in seconds)
	PollInterval int

	// ImageFilename is the path the cached album art is written to
	ImageFilename string

	// Last.fm API credentials
	LastFM LastFMConfig
}

// LastFMConfig holds Last.fm specific configuration
type LastFMConfig struct {
	APIKey   string
	Username string
}

// Load reads configuration from file and environment.
//
// A .env file in the working directory is loaded first (matching how
// people tend to keep their Last.fm key next to the binary), then the
// optional config file, then real environment variables, which win.
func Load() (*Config, error) {
	// Missing .env is fine; real env vars may already be set.
	_ = godotenv.Load()

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Set defaults
	v.SetDefault("output_format", defaultOutputFormat)
	v.SetDefault("poll_interval", defaultPollInterval)
	v.SetDefault("image_filename", DefaultImageFilename)

	// Read config file (optional - don't fail if missing)
	_ = v.ReadInConfig()

	// Environment variable names predate the config file, so they are
	// bound explicitly rather than via a prefix.
	_ = v.BindEnv("lastfm.api_key", "LASTFM_API_KEY")
	_ = v.BindEnv("lastfm.username", "LASTFM_USERNAME")
	_ = v.BindEnv("image_filename", "TUNEDISPLAY_IMAGE_FILENAME")
	_ = v.BindEnv("poll_interval", "TUNEDISPLAY_POLL_INTERVAL")

	// Map config to struct
	cfg := &Config{
		OutputFormat:  v.GetString("output_format"),
		PollInterval:  v.GetInt("poll_interval"),
		ImageFilename: v.GetString("image_filename"),
		LastFM: LastFMConfig{
			APIKey:   v.GetString("lastfm.api_key"),
			Username: v.GetString("lastfm.username"),
		},
	}

	return cfg, nil
}

// Validate checks that required credentials are present.
//
// Placeholder values from setup instructions count as missing, so a
// copy-pasted example config fails fast instead of erroring every poll.
func (c *Config) Validate() error {
	if c.LastFM.APIKey == "" || c.LastFM.APIKey == "YOUR_API_KEY" {
		return fmt.Errorf("LASTFM_API_KEY is not set: provide it via .env, environment, or %s", filepath.Join(getConfigDir(), "config.yaml"))
	}
	if c.LastFM.Username == "" || c.LastFM.Username == "YOUR_USERNAME" {
		return fmt.Errorf("LASTFM_USERNAME is not set: provide it via .env, environment, or %s", filepath.Join(getConfigDir(), "config.yaml"))
	}
	return nil
}

// Interval returns the poll interval as a duration, clamped to
// MinPollInterval.
func (c *Config) Interval() time.Duration {
	d := time.Duration(c.PollInterval) * time.Second
	if d < MinPollInterval {
		return MinPollInterval
	}
	return d
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "tunedisplay")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}
