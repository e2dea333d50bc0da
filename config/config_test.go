package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, [3]float32{0, 1, 2}, cfg.Camera.Eye)
	assert.Equal(t, float32(0.2), cfg.Camera.Speed)
	assert.Equal(t, 10, cfg.Instances.PerRow)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oxy.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[window]
width = 1024

[assets]
source = "http"
origin = "http://localhost:8080"

[log]
level = "debug"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height)
	assert.Equal(t, "http", cfg.Assets.Source)
	assert.Equal(t, "happy-tree.png", cfg.Assets.Texture)

	lvl, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	cfg := Default()
	err := Parse([]byte("[window]\ncolour = \"red\"\n"), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"near beyond far", func(c *Config) { c.Camera.ZNear = 200 }},
		{"no instances", func(c *Config) { c.Instances.PerRow = 0 }},
		{"bad source", func(c *Config) { c.Assets.Source = "ftp" }},
		{"http without origin", func(c *Config) { c.Assets.Source = "http" }},
		{"bad present mode", func(c *Config) { c.Renderer.PresentMode = "vsync-ish" }},
		{"present mode alias", func(c *Config) { c.Renderer.PresentMode = "vsync" }},
		{"zero speed", func(c *Config) { c.Camera.Speed = 0 }},
		{"negative speed", func(c *Config) { c.Camera.Speed = -0.2 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidatePresentModeIgnoresCase(t *testing.T) {
	cfg := Default()
	cfg.Renderer.PresentMode = "Mailbox"
	assert.NoError(t, cfg.Validate())
}

func TestExampleFileMatchesDefaults(t *testing.T) {
	cfg, err := Load("../oxy.example.toml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
