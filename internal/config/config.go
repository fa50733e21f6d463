// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Faultbox/objscene/internal/engine/model"
)

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Render  RenderConfig  `yaml:"render"`
	Scene   SceneConfig   `yaml:"scene"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// RenderConfig holds mesh expansion and drawing settings.
type RenderConfig struct {
	Tangents     string     `yaml:"tangents"`      // overwrite | accumulate
	DegenerateUV string     `yaml:"degenerate_uv"` // propagate | reject | skip
	ClearColor   [3]float32 `yaml:"clear_color"`
	FOV          float32    `yaml:"fov"` // Vertical field of view in degrees
}

// SceneConfig lists the entities to spawn at startup.
type SceneConfig struct {
	Meshes []MeshConfig  `yaml:"meshes"`
	Lights []LightConfig `yaml:"lights"`
}

// MeshConfig places one OBJ mesh in the scene.
type MeshConfig struct {
	Name      string         `yaml:"name"`
	Path      string         `yaml:"path"`
	Position  [3]float32     `yaml:"position"`
	RotationY float32        `yaml:"rotation_y"` // Degrees
	Scale     [3]float32     `yaml:"scale"`
	Material  MaterialConfig `yaml:"material"`
	Texture   string         `yaml:"texture"`
}

// MaterialConfig holds Phong material coefficients.
type MaterialConfig struct {
	Ambient   [3]float32 `yaml:"ambient"`
	Diffuse   [3]float32 `yaml:"diffuse"`
	Specular  [3]float32 `yaml:"specular"`
	Shininess float32    `yaml:"shininess"`
}

// LightConfig places a point light in the scene.
type LightConfig struct {
	Name     string     `yaml:"name"`
	Position [3]float32 `yaml:"position"`
	Color    [3]float32 `yaml:"color"`
}

// WatchConfig controls mesh hot reload.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "objscene",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Render: RenderConfig{
			Tangents:     model.TangentOverwrite.String(),
			DegenerateUV: model.DegenerateUVPropagate.String(),
			ClearColor:   [3]float32{0.1, 0.1, 0.15},
			FOV:          45,
		},
		Scene: SceneConfig{
			Lights: []LightConfig{
				{Name: "sun", Position: [3]float32{2, 4, 3}, Color: [3]float32{1, 1, 1}},
			},
		},
		Watch: WatchConfig{
			Enabled:  false,
			Debounce: 200 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// DefaultMaterial returns the material used when a mesh entry sets none.
func DefaultMaterial() MaterialConfig {
	return MaterialConfig{
		Ambient:   [3]float32{0.1, 0.1, 0.1},
		Diffuse:   [3]float32{0.8, 0.8, 0.8},
		Specular:  [3]float32{0.5, 0.5, 0.5},
		Shininess: 32,
	}
}

// ExpandOptions converts the render section into mesh expansion options.
func (c *Config) ExpandOptions() (model.ExpandOptions, error) {
	tangents, err := model.ParseTangentMode(c.Render.Tangents)
	if err != nil {
		return model.ExpandOptions{}, err
	}
	uv, err := model.ParseDegenerateUVPolicy(c.Render.DegenerateUV)
	if err != nil {
		return model.ExpandOptions{}, err
	}
	return model.ExpandOptions{Tangents: tangents, DegenerateUV: uv}, nil
}

// Validate checks settings that cannot be repaired with defaults.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if _, err := c.ExpandOptions(); err != nil {
		return err
	}
	for i, m := range c.Scene.Meshes {
		if strings.TrimSpace(m.Path) == "" {
			return fmt.Errorf("scene mesh %d: missing path", i)
		}
	}
	return nil
}

// applyMeshDefaults fills zero-valued mesh fields.
func (c *Config) applyMeshDefaults() {
	for i := range c.Scene.Meshes {
		m := &c.Scene.Meshes[i]
		if m.Name == "" {
			m.Name = strings.TrimSuffix(filepath.Base(m.Path), filepath.Ext(m.Path))
		}
		if m.Scale == ([3]float32{}) {
			m.Scale = [3]float32{1, 1, 1}
		}
		if m.Material == (MaterialConfig{}) {
			m.Material = DefaultMaterial()
		}
	}
}
