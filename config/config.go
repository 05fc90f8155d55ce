package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
)

const (
	DefaultScrollback = 10000
	DefaultTitle      = "Terminal"
)

// Image protocols for inline images.
const (
	ImagesHalfBlock = "halfblock"
	ImagesNone      = "none"
)

type Config struct {
	Shell                 string `json:"shell"`
	Theme                 string `json:"theme"`
	Palette               string `json:"palette"`
	ScrollbackHistorySize int    `json:"scrollback_history_size"`
	DefaultTitle          string `json:"default_title"`
	ImageProtocol         string `json:"image_protocol"`
	LogFile               string `json:"log_file"`
}

type ColorScheme struct {
	Name        string
	Background  tcell.Color
	Foreground  tcell.Color
	Selection   tcell.Color
	Caret       tcell.Color
	StatusBarBg tcell.Color
	StatusBarFg tcell.Color
	TitleBg     tcell.Color
	TitleFg     tcell.Color
}

var Themes = map[string]*ColorScheme{
	"dark": {
		Name:        "Dark",
		Background:  tcell.ColorBlack,
		Foreground:  tcell.ColorWhite,
		Selection:   tcell.ColorDarkBlue,
		Caret:       tcell.ColorWhite,
		StatusBarBg: tcell.ColorDarkBlue,
		StatusBarFg: tcell.ColorWhite,
		TitleBg:     tcell.ColorBlue,
		TitleFg:     tcell.ColorWhite,
	},
	"light": {
		Name:        "Light",
		Background:  tcell.ColorWhite,
		Foreground:  tcell.ColorBlack,
		Selection:   tcell.ColorLightBlue,
		Caret:       tcell.ColorBlack,
		StatusBarBg: tcell.ColorLightBlue,
		StatusBarFg: tcell.ColorBlack,
		TitleBg:     tcell.ColorBlue,
		TitleFg:     tcell.ColorWhite,
	},
	"monokai": {
		Name:        "Monokai",
		Background:  tcell.NewRGBColor(39, 40, 34),
		Foreground:  tcell.NewRGBColor(248, 248, 242),
		Selection:   tcell.NewRGBColor(73, 72, 62),
		Caret:       tcell.NewRGBColor(248, 248, 240),
		StatusBarBg: tcell.NewRGBColor(73, 72, 62),
		StatusBarFg: tcell.NewRGBColor(248, 248, 242),
		TitleBg:     tcell.NewRGBColor(102, 217, 239),
		TitleFg:     tcell.NewRGBColor(39, 40, 34),
	},
	"nord": {
		Name:        "Nord",
		Background:  tcell.NewRGBColor(46, 52, 64),
		Foreground:  tcell.NewRGBColor(236, 239, 244),
		Selection:   tcell.NewRGBColor(67, 76, 94),
		Caret:       tcell.NewRGBColor(216, 222, 233),
		StatusBarBg: tcell.NewRGBColor(67, 76, 94),
		StatusBarFg: tcell.NewRGBColor(236, 239, 244),
		TitleBg:     tcell.NewRGBColor(136, 192, 208),
		TitleFg:     tcell.NewRGBColor(46, 52, 64),
	},
	"gruvbox": {
		Name:        "Gruvbox Dark",
		Background:  tcell.NewRGBColor(40, 40, 40),
		Foreground:  tcell.NewRGBColor(235, 219, 178),
		Selection:   tcell.NewRGBColor(60, 56, 54),
		Caret:       tcell.NewRGBColor(251, 241, 199),
		StatusBarBg: tcell.NewRGBColor(60, 56, 54),
		StatusBarFg: tcell.NewRGBColor(235, 219, 178),
		TitleBg:     tcell.NewRGBColor(184, 187, 38),
		TitleFg:     tcell.NewRGBColor(40, 40, 40),
	},
	"dracula": {
		Name:        "Dracula",
		Background:  tcell.NewRGBColor(40, 42, 54),
		Foreground:  tcell.NewRGBColor(248, 248, 242),
		Selection:   tcell.NewRGBColor(68, 71, 90),
		Caret:       tcell.NewRGBColor(248, 248, 242),
		StatusBarBg: tcell.NewRGBColor(68, 71, 90),
		StatusBarFg: tcell.NewRGBColor(248, 248, 242),
		TitleBg:     tcell.NewRGBColor(189, 147, 249),
		TitleFg:     tcell.NewRGBColor(40, 42, 54),
	},
	"high-contrast": {
		Name:        "High Contrast",
		Background:  tcell.NewRGBColor(0, 0, 0),
		Foreground:  tcell.NewRGBColor(255, 255, 255),
		Selection:   tcell.NewRGBColor(0, 80, 160),
		Caret:       tcell.NewRGBColor(255, 255, 0),
		StatusBarBg: tcell.NewRGBColor(0, 0, 200),
		StatusBarFg: tcell.NewRGBColor(255, 255, 255),
		TitleBg:     tcell.NewRGBColor(200, 200, 0),
		TitleFg:     tcell.NewRGBColor(0, 0, 0),
	},
}

func Default() *Config {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return &Config{
		Shell:                 shell,
		Theme:                 "monokai",
		Palette:               "monokai",
		ScrollbackHistorySize: DefaultScrollback,
		DefaultTitle:          DefaultTitle,
		ImageProtocol:         ImagesHalfBlock,
	}
}

func (c *Config) GetTheme() *ColorScheme {
	theme, ok := Themes[c.Theme]
	if !ok {
		return Themes["monokai"]
	}
	return theme
}

// normalize replaces values that would break the host with defaults.
func (c *Config) normalize() {
	if c.ScrollbackHistorySize <= 0 {
		c.ScrollbackHistorySize = DefaultScrollback
	}
	if c.DefaultTitle == "" {
		c.DefaultTitle = DefaultTitle
	}
	if c.ImageProtocol != ImagesNone {
		c.ImageProtocol = ImagesHalfBlock
	}
}

func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "termview", "settings.json")
}

func Load() (*Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile reads settings from path on top of the defaults. A missing file
// is not an error. Unknown keys are ignored.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) Save() error {
	path := ConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
