package opentui

import (
	"os"
	"runtime"
	"strings"

	"github.com/caarlos0/env/v6"
)

// EngineConfig is the environment-driven engine configuration. Fields
// left at their zero value fall back to built-in defaults at engine
// construction, except ResizeDebounceMs: zero turns resize debouncing
// off.
type EngineConfig struct {
	TargetFPS        int    `env:"OPENTUI_FPS" envDefault:"30"`
	WidthMethodName  string `env:"OPENTUI_WIDTH_METHOD" envDefault:"wcwidth"`
	SplitHeight      int    `env:"OPENTUI_SPLIT_HEIGHT"`
	ResizeDebounceMs int    `env:"OPENTUI_RESIZE_DEBOUNCE_MS" envDefault:"100"`
	NoAltScreen      bool   `env:"OPENTUI_NO_ALT_SCREEN"`
	Debug            bool   `env:"OPENTUI_DEBUG"`
	MaxCapturedLines int    `env:"OPENTUI_MAX_CAPTURED_LINES" envDefault:"1000"`
	NoColor          bool   `env:"NO_COLOR"`
}

// LoadConfig reads the engine configuration from the environment.
func LoadConfig() (EngineConfig, error) {
	var cfg EngineConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// WidthMethod maps the configured name to a method; unknown names fall
// back to wcwidth.
func (c EngineConfig) WidthMethod() WidthMethod {
	if strings.EqualFold(c.WidthMethodName, "unicode") {
		return WidthUnicode
	}
	return WidthWCWidth
}

// Capabilities describes what the host terminal supports, derived from
// the environment and runtime queries.
type Capabilities struct {
	TrueColor   bool
	AltScreen   bool
	MouseSGR    bool
	Kitty       bool
	PixelWidth  int
	PixelHeight int
}

// DetectCapabilities sniffs TERM/COLORTERM and the platform. Pixel
// size arrives later via the CSI 14 t response and is filled in by the
// terminal layer.
func DetectCapabilities() Capabilities {
	term := os.Getenv("TERM")
	colorterm := os.Getenv("COLORTERM")

	caps := Capabilities{
		AltScreen: term != "" && term != "dumb",
		MouseSGR:  term != "" && term != "dumb",
	}
	switch {
	case colorterm == "truecolor" || colorterm == "24bit":
		caps.TrueColor = true
	case strings.Contains(term, "256color"):
		// 256-color terminals almost universally accept 24-bit SGR;
		// keep emitting it.
		caps.TrueColor = true
	}
	if strings.Contains(term, "kitty") || os.Getenv("KITTY_WINDOW_ID") != "" {
		caps.Kitty = true
	}
	if runtime.GOOS == "windows" {
		caps.Kitty = false
	}
	return caps
}
