package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Server    ServerConfig    `mapstructure:"server"`
	Bar       BarConfig       `mapstructure:"bar"`
	Chord     ChordConfig     `mapstructure:"chord"`
	Animation AnimationConfig `mapstructure:"animation"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DataConfig holds the paths of the three input files
type DataConfig struct {
	Records    string `mapstructure:"records"`
	Boundaries string `mapstructure:"boundaries"`
	Graph      string `mapstructure:"graph"`
}

// ServerConfig holds the local host configuration
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// BarConfig holds bar chart defaults
type BarConfig struct {
	Items      int  `mapstructure:"items"`
	Descending bool `mapstructure:"descending"`
}

// ChordConfig holds chord diagram settings
type ChordConfig struct {
	SignificantPercent float64 `mapstructure:"significant_percent"`
}

// AnimationConfig holds play sweep settings
type AnimationConfig struct {
	FrameDelay time.Duration `mapstructure:"frame_delay"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables. An empty
// path uses defaults and environment only.
func Load(path string) (*Config, error) {
	return LoadWith(viper.New(), path)
}

// LoadWith is Load on a caller-provided viper instance, so command line
// flags bound to v take precedence over the file.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	// Set defaults
	setDefaults(v)

	// Enable environment variable override (ENERGYDASH_SERVER_ADDRESS, ...)
	v.SetEnvPrefix("ENERGYDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Data defaults
	v.SetDefault("data.records", "data/energyData_merged.csv")
	v.SetDefault("data.boundaries", "data/world.geojson")
	v.SetDefault("data.graph", "data/forceGraph.json")

	// Server defaults
	v.SetDefault("server.address", ":8080")

	// Chart defaults
	v.SetDefault("bar.items", 10)
	v.SetDefault("bar.descending", true)
	v.SetDefault("chord.significant_percent", 10.0)
	v.SetDefault("animation.frame_delay", "500ms")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Data.Records == "" {
		return fmt.Errorf("data.records is required")
	}
	if c.Data.Graph == "" {
		return fmt.Errorf("data.graph is required")
	}
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}

	if c.Bar.Items < 1 {
		return fmt.Errorf("bar.items must be at least 1")
	}
	if c.Chord.SignificantPercent < 0 || c.Chord.SignificantPercent > 100 {
		return fmt.Errorf("chord.significant_percent must be between 0 and 100")
	}
	if c.Animation.FrameDelay < 0 {
		return fmt.Errorf("animation.frame_delay must not be negative")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
