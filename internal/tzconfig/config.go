// Package tzconfig loads tzcheck's configuration from flags, environment
// variables, and a YAML config file, in that order of precedence, the way
// viper is meant to be used.
package tzconfig

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the settings tzcheck needs to locate and filter a tzdb
// release.
type Config struct {
	// Source is a path to a tzdata source, either a single text file in
	// tzdata grammar or a .tar.gz release archive as distributed by IANA.
	// A directory is not read as a set of files. Empty means "fetch the
	// latest release over the network."
	Source string `mapstructure:"source"`
	// ZoneFilter, when non-empty, is a regular expression; only zone names
	// matching it are kept.
	ZoneFilter string `mapstructure:"zone_filter"`
}

// Load reads tzcheck's configuration. Flags passed in override the
// TZCHECK_SOURCE/TIMEZONE_FILTER environment variables, which override the
// config file, which overrides the zero-value defaults.
func Load(flagSource, flagZoneFilter string) (*Config, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	if err := v.BindEnv("source", "TZCHECK_SOURCE"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("zone_filter", "TIMEZONE_FILTER"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(flagSource) != "" {
		cfg.Source = flagSource
	}
	if strings.TrimSpace(flagZoneFilter) != "" {
		cfg.ZoneFilter = flagZoneFilter
	}

	return &cfg, nil
}

// ConfigDir returns the platform-appropriate directory tzcheck looks for
// config.yaml in, honoring XDG_CONFIG_HOME, falling back to the OS default
// and then to ~/.tzcheck.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tzcheck"), nil
	}
	if base, err := os.UserConfigDir(); err == nil && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "tzcheck"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".tzcheck"), nil
}
