package config

import (
	"flag"
	"time"
)

var (
	flagConfig         = flag.String("config", "", "Path to config file")
	flagDebug          = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed       = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen     = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth          = flag.Int("width", 0, "Window width")
	flagHeight         = flag.Int("height", 0, "Window height")
	flagBuffers        = flag.Int("buffers", 0, "Uniform buffers per node")
	flagAcquireTimeout = flag.Duration("acquire-timeout", 0, "Max wait for a free uniform buffer")
	flagTexture        = flag.String("texture", "", "Image file to texture the cube with")
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
	if *flagBuffers > 0 {
		cfg.Render.InflightBuffers = *flagBuffers
	}
	if *flagAcquireTimeout > 0 {
		cfg.Render.AcquireTimeout = *flagAcquireTimeout
	}
	if *flagTexture != "" {
		cfg.Assets.Texture = *flagTexture
	}
}

// resetFlags restores every override to its zero value.
func resetFlags() {
	*flagConfig = ""
	*flagDebug = false
	*flagWindowed = false
	*flagFullscreen = false
	*flagWidth = 0
	*flagHeight = 0
	*flagBuffers = 0
	*flagAcquireTimeout = time.Duration(0)
	*flagTexture = ""
}
