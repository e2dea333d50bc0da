// Package config loads the demo's TOML configuration. Every field has a default, so a
// missing file yields a runnable configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the root of the configuration file.
type Config struct {
	Window    WindowConfig    `toml:"window"`
	Renderer  RendererConfig  `toml:"renderer"`
	Camera    CameraConfig    `toml:"camera"`
	Instances InstancesConfig `toml:"instances"`
	Assets    AssetsConfig    `toml:"assets"`
	Log       LogConfig       `toml:"log"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

type RendererConfig struct {
	// PresentMode is "fifo", "immediate", "mailbox" or empty for the surface's first supported mode.
	PresentMode          string `toml:"present_mode"`
	ForceFallbackAdapter bool   `toml:"force_fallback_adapter"`
	// ValidateShaders runs WGSL through the naga compiler before pipeline creation.
	ValidateShaders bool `toml:"validate_shaders"`
}

type CameraConfig struct {
	Eye         [3]float32 `toml:"eye"`
	Target      [3]float32 `toml:"target"`
	Up          [3]float32 `toml:"up"`
	FovyDegrees float32    `toml:"fovy_degrees"`
	ZNear       float32    `toml:"znear"`
	ZFar        float32    `toml:"zfar"`
	Speed       float32    `toml:"speed"`
}

type InstancesConfig struct {
	PerRow  int     `toml:"per_row"`
	Spacing float32 `toml:"spacing"`
}

type AssetsConfig struct {
	// Source selects the AssetSource backend: "fs" or "http".
	Source string `toml:"source"`
	Dir    string `toml:"dir"`
	Origin string `toml:"origin"`
	Prefix string `toml:"prefix"`

	Texture     string `toml:"texture"`
	Shader      string `toml:"shader"`
	ModelShader string `toml:"model_shader"`
	// Model is an optional OBJ file drawn instead of the built-in pentagon.
	Model string `toml:"model"`

	Workers      int  `toml:"workers"`
	ShowProgress bool `toml:"show_progress"`
}

type LogConfig struct {
	Level   string `toml:"level"`
	Profile bool   `toml:"profile"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Window: WindowConfig{Title: "oxy tutorial", Width: 800, Height: 600},
		Camera: CameraConfig{
			Eye:         [3]float32{0, 1, 2},
			Target:      [3]float32{0, 0, 0},
			Up:          [3]float32{0, 1, 0},
			FovyDegrees: 45,
			ZNear:       0.1,
			ZFar:        100,
			Speed:       0.2,
		},
		Instances: InstancesConfig{PerRow: 10, Spacing: 3},
		Assets: AssetsConfig{
			Source:      "fs",
			Dir:         "res",
			Prefix:      "wgpu_winit/src/webassembly/res",
			Texture:     "happy-tree.png",
			Shader:      "shader.wgsl",
			ModelShader: "model_shader.wgsl",
			Workers:     4,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file is not an error.
//
// Parameters:
//   - path: TOML file path; empty means defaults only
//
// Returns:
//   - Config: the merged, validated configuration
//   - error: error if the file cannot be read, has unknown keys or fails validation
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, cfg.Validate()
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Parse decodes TOML data into cfg, leaving absent keys untouched. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("unknown keys:\n%s", strict.String())
		}
		return err
	}
	return nil
}

// PresentModes lists the accepted [renderer] present_mode values, compared case-insensitively.
// The empty string leaves the choice to the surface.
var PresentModes = []string{"", "fifo", "immediate", "mailbox"}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	case c.Camera.ZNear <= 0 || c.Camera.ZNear >= c.Camera.ZFar:
		return fmt.Errorf("camera planes must satisfy 0 < znear < zfar, got %v and %v", c.Camera.ZNear, c.Camera.ZFar)
	case c.Camera.FovyDegrees <= 0 || c.Camera.FovyDegrees >= 180:
		return fmt.Errorf("camera fovy_degrees must be in (0, 180), got %v", c.Camera.FovyDegrees)
	case c.Instances.PerRow < 1:
		return fmt.Errorf("instances per_row must be at least 1, got %d", c.Instances.PerRow)
	case !slices.Contains([]string{"fs", "http"}, c.Assets.Source):
		return fmt.Errorf("unknown asset source %q", c.Assets.Source)
	case c.Assets.Source == "http" && c.Assets.Origin == "":
		return fmt.Errorf("asset source http requires an origin")
	case c.Camera.Speed <= 0:
		return fmt.Errorf("camera speed must be positive, got %v", c.Camera.Speed)
	case !slices.Contains(PresentModes, strings.ToLower(c.Renderer.PresentMode)):
		return fmt.Errorf("unknown present mode %q", c.Renderer.PresentMode)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return lvl, fmt.Errorf("unknown log level %q", l.Level)
	}
	return lvl, nil
}
