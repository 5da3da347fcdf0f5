// ABOUTME: Application configuration loaded through viper
// ABOUTME: Merges defaults, an optional tonetable.yaml and TONETABLE_* environment variables
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable
const EnvPrefix = "TONETABLE"

// Config holds all configuration for the application
type Config struct {
	Audio  AudioConfig
	Server ServerConfig
	Log    LogConfig
}

// AudioConfig holds tone generation and playback settings
type AudioConfig struct {
	SampleRate   int
	Amplitude    float64
	NoteDuration time.Duration
	Backend      string
	Volume       int
}

// ServerConfig holds tone server settings
type ServerConfig struct {
	Port           int
	Name           string
	MDNS           bool
	AllowedOrigins []string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
	File  string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("audio.sample_rate", 44100)
	v.SetDefault("audio.amplitude", 0.3)
	v.SetDefault("audio.note_duration", "1s")
	v.SetDefault("audio.backend", "oto")
	v.SetDefault("audio.volume", 100)
	v.SetDefault("server.port", 8927)
	v.SetDefault("server.name", "tonetable")
	v.SetDefault("server.mdns", true)
	v.SetDefault("server.allowed_origins", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Load reads configuration. An empty path looks for tonetable.yaml in the
// working directory and tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tonetable")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("loaded config file")
	}

	// Environment variables override file values
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	cfg.Audio.SampleRate = v.GetInt("audio.sample_rate")
	cfg.Audio.Amplitude = v.GetFloat64("audio.amplitude")
	cfg.Audio.NoteDuration = v.GetDuration("audio.note_duration")
	cfg.Audio.Backend = v.GetString("audio.backend")
	cfg.Audio.Volume = v.GetInt("audio.volume")
	cfg.Server.Port = v.GetInt("server.port")
	cfg.Server.Name = v.GetString("server.name")
	cfg.Server.MDNS = v.GetBool("server.mdns")
	cfg.Server.AllowedOrigins = splitList(v.GetString("server.allowed_origins"))
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.File = v.GetString("log.file")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no component can run with
func (c *Config) Validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", c.Audio.SampleRate)
	}
	if c.Audio.Amplitude <= 0 || c.Audio.Amplitude > 1 {
		return fmt.Errorf("amplitude %.2f outside (0, 1]", c.Audio.Amplitude)
	}
	if c.Audio.NoteDuration <= 0 {
		return fmt.Errorf("invalid note duration %v", c.Audio.NoteDuration)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume %d outside 0-100", c.Audio.Volume)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
