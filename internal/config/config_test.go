// ABOUTME: Tests for configuration loading
// ABOUTME: Covers defaults, config files and environment overrides
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, 0.3, cfg.Audio.Amplitude)
	assert.Equal(t, time.Second, cfg.Audio.NoteDuration)
	assert.Equal(t, "oto", cfg.Audio.Backend)
	assert.Equal(t, 100, cfg.Audio.Volume)
	assert.Equal(t, 8927, cfg.Server.Port)
	assert.True(t, cfg.Server.MDNS)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	body := `audio:
  sample_rate: 48000
  note_duration: 250ms
  backend: beep
server:
  name: studio
  mdns: false
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 48000, cfg.Audio.SampleRate)
	assert.Equal(t, 250*time.Millisecond, cfg.Audio.NoteDuration)
	assert.Equal(t, "beep", cfg.Audio.Backend)
	assert.Equal(t, "studio", cfg.Server.Name)
	assert.False(t, cfg.Server.MDNS)
	assert.Equal(t, 0.3, cfg.Audio.Amplitude, "unset keys keep defaults")
}

func TestLoadDiscoversWorkingDirectoryFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tonetable.yaml"), []byte("audio:\n  volume: 40\n"), 0o644))
	chdir(t, dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Audio.Volume)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TONETABLE_AUDIO_BACKEND", "null")
	t.Setenv("TONETABLE_SERVER_PORT", "9000")
	t.Setenv("TONETABLE_SERVER_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "null", cfg.Audio.Backend)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TONETABLE_AUDIO_AMPLITUDE", "1.5")

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{
		Audio:  AudioConfig{SampleRate: 44100, Amplitude: 0.3, NoteDuration: time.Second, Volume: 50},
		Server: ServerConfig{Port: 8927},
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero rate", func(c *Config) { c.Audio.SampleRate = 0 }},
		{"zero amplitude", func(c *Config) { c.Audio.Amplitude = 0 }},
		{"negative duration", func(c *Config) { c.Audio.NoteDuration = -time.Second }},
		{"loud", func(c *Config) { c.Audio.Volume = 101 }},
		{"port", func(c *Config) { c.Server.Port = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
