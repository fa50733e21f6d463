package config

import (
	"flag"
	"strings"
)

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagMesh       = flag.String("mesh", "", "Comma-separated OBJ files to show instead of the configured scene")
	flagWatch      = flag.Bool("watch", false, "Reload meshes when their files change")
	flagTangents   = flag.String("tangents", "", "Tangent mode: overwrite or accumulate")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagMesh != "" {
		cfg.Scene.Meshes = nil
		for _, path := range strings.Split(*flagMesh, ",") {
			if path = strings.TrimSpace(path); path != "" {
				cfg.Scene.Meshes = append(cfg.Scene.Meshes, MeshConfig{Path: path})
			}
		}
	}
	if *flagWatch {
		cfg.Watch.Enabled = true
	}
	if *flagTangents != "" {
		cfg.Render.Tangents = *flagTangents
	}
}
