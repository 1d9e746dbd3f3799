// Package config handles configuration loading using viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/igorolhovskiy/rtpproxy/internal/core"
)

// Config is the top-level tool configuration.
type Config struct {
	Output OutputConfig `mapstructure:"output"`
	Audio  AudioConfig  `mapstructure:"audio"`
	Log    LogConfig    `mapstructure:"log"`
}

// OutputConfig controls where extracted artifacts are written.
type OutputConfig struct {
	Dir string `mapstructure:"dir"` // Destination for WAV / pcap outputs
}

// AudioConfig contains audio extraction parameters.
type AudioConfig struct {
	SampleRate int `mapstructure:"sample_rate"`
	// MinPackets drops streams shorter than this many RTP packets,
	// filtering out stray probes that share a port with real media.
	MinPackets int `mapstructure:"min_packets"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string           `mapstructure:"level"`  // debug / info / warn / error
	Format  string           `mapstructure:"format"` // json / text
	Outputs LogOutputsConfig `mapstructure:"outputs"`
}

// LogOutputsConfig contains structured log output destinations.
type LogOutputsConfig struct {
	File FileOutputConfig `mapstructure:"file"`
}

// FileOutputConfig configures file log output.
type FileOutputConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Path     string         `mapstructure:"path"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	MaxBackups int  `mapstructure:"max_backups"`
	Compress   bool `mapstructure:"compress"`
}

// Load loads configuration from an optional YAML file. Environment
// variables override file values (key "log.level" → env RTPPROXY_LOG_LEVEL).
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("RTPPROXY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output.dir", ".")

	v.SetDefault("audio.sample_rate", 8000)
	v.SetDefault("audio.min_packets", 1)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.outputs.file.enabled", false)
	v.SetDefault("log.outputs.file.path", "rtpproxy-extract.log")
	v.SetDefault("log.outputs.file.rotation.max_size_mb", 100)
	v.SetDefault("log.outputs.file.rotation.max_age_days", 30)
	v.SetDefault("log.outputs.file.rotation.max_backups", 5)
	v.SetDefault("log.outputs.file.rotation.compress", true)
}

// Validate checks configuration invariants.
func (cfg *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("%w: log level %q (must be debug/info/warn/error)", core.ErrConfigInvalid, cfg.Log.Level)
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return fmt.Errorf("%w: log format %q (must be json/text)", core.ErrConfigInvalid, cfg.Log.Format)
	}
	if cfg.Audio.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", core.ErrConfigInvalid, cfg.Audio.SampleRate)
	}
	if cfg.Audio.MinPackets < 0 {
		return fmt.Errorf("%w: min_packets %d", core.ErrConfigInvalid, cfg.Audio.MinPackets)
	}
	if cfg.Output.Dir == "" {
		return fmt.Errorf("%w: output.dir must not be empty", core.ErrConfigInvalid)
	}
	return nil
}
