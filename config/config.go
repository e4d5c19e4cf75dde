// Package config handles loading and managing generator configuration
// from YAML files, an optional .env file and environment variable overrides.
package config

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bonvoyage/siteassets/qr"
)

// maxICOSize is the largest edge a Windows icon entry can hold.
const maxICOSize = 256

// DefaultQRURL is the site address encoded into every QR variant.
const DefaultQRURL = "https://shudai777.github.io/Bon-Voyage-/"

// DefaultFontPath is the preferred label typeface.
const DefaultFontPath = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"

// FaviconVariant is one family of favicon files sharing a background style.
type FaviconVariant struct {
	Name            string `yaml:"name"`
	Background      bool   `yaml:"background"`
	BackgroundColor Color  `yaml:"background_color"`
}

// FaviconConfig controls favicon generation.
type FaviconConfig struct {
	Sizes       []int            `yaml:"sizes"`
	PrimarySize int              `yaml:"primary_size"`
	Variants    []FaviconVariant `yaml:"variants"`
	BadgeColor  Color            `yaml:"badge_color"`
	Label       string           `yaml:"label"`
	LabelColor  Color            `yaml:"label_color"`
	FontPath    string           `yaml:"font_path"`
	ICOVariant  string           `yaml:"ico_variant"`
	ICOSize     int              `yaml:"ico_size"`
}

// QRVariant is one rendered QR code file.
type QRVariant struct {
	Name       string `yaml:"name"`
	File       string `yaml:"file"`
	Shape      string `yaml:"shape"`
	Foreground Color  `yaml:"foreground"`
	Background Color  `yaml:"background"`
	BoxSize    int    `yaml:"box_size"`
	Border     int    `yaml:"border"`
}

// QRConfig controls QR code generation.
type QRConfig struct {
	URL      string      `yaml:"url"`
	Level    string      `yaml:"level"`
	Variants []QRVariant `yaml:"variants"`
}

// Config holds all application configuration values.
type Config struct {
	Port      int           `yaml:"port"`
	OutputDir string        `yaml:"output_dir"`
	DataDir   string        `yaml:"data_dir"`
	LogLevel  string        `yaml:"log_level"`
	Favicon   FaviconConfig `yaml:"favicon"`
	QR        QRConfig      `yaml:"qr"`
}

// Color is a wrapper around color.RGBA that supports YAML unmarshalling
// from hex strings like "#1E73E8" or "#1E73E8FF".
type Color struct {
	color.RGBA
}

// ParseColor parses "#RRGGBB" or "#RRGGBBAA". The leading '#' is optional.
func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 && len(h) != 8 {
		return Color{}, fmt.Errorf("invalid color %q: want #RRGGBB or #RRGGBBAA", s)
	}
	if len(h) == 6 {
		h += "ff"
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}}, nil
}

// String formats the color as #RRGGBBAA.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Color.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for Color.
func (c Color) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

func rgba(r, g, b, a uint8) Color {
	return Color{color.RGBA{R: r, G: g, B: b, A: a}}
}

// Brand colors used by the site.
var (
	White     = rgba(255, 255, 255, 255)
	Black     = rgba(0, 0, 0, 255)
	BrandBlue = rgba(30, 115, 232, 255)
	QRBlue    = rgba(26, 115, 232, 255)
	Accent    = rgba(0, 212, 255, 255)
)

// defaults returns a Config that reproduces the site's asset set.
func defaults() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return &Config{
		Port:      8556,
		OutputDir: ".",
		DataDir:   filepath.Join(homeDir, ".bonvoyage-assets"),
		LogLevel:  "info",
		Favicon: FaviconConfig{
			Sizes:       []int{512, 192, 180, 48, 32, 16},
			PrimarySize: 512,
			Variants: []FaviconVariant{
				{Name: "transparent"},
				{Name: "blue-circle", Background: true, BackgroundColor: BrandBlue},
			},
			BadgeColor: White,
			Label:      "BV",
			LabelColor: BrandBlue,
			FontPath:   DefaultFontPath,
			ICOVariant: "transparent",
			ICOSize:    48,
		},
		QR: QRConfig{
			URL:   DefaultQRURL,
			Level: "high",
			Variants: []QRVariant{
				{Name: "basic", File: "qrcode_basic.png", Shape: "square", Foreground: Black, Background: White, BoxSize: 10, Border: 4},
				{Name: "styled", File: "qrcode_styled.png", Shape: "rounded", Foreground: QRBlue, Background: White, BoxSize: 10, Border: 4},
				{Name: "circle", File: "qrcode_circle.png", Shape: "circle", Foreground: Accent, Background: White, BoxSize: 10, Border: 4},
				{Name: "highres", File: "qrcode_highres.png", Shape: "square", Foreground: Black, Background: White, BoxSize: 20, Border: 5},
			},
		},
	}
}

// Default returns the built-in configuration with environment overrides
// applied.
func Default() *Config {
	cfg := defaults()
	applyEnvOverrides(cfg)
	return cfg
}

// Load reads configuration from the YAML file at path, falling back to
// defaults if the file does not exist. A .env file next to the working
// directory is loaded first; environment variables with the BV_ prefix
// override any file or default values.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies BV_* environment variable overrides to cfg.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BV_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("BV_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("BV_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("BV_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("BV_QR_URL"); v != "" {
		cfg.QR.URL = v
	}
	if v := os.Getenv("BV_FONT_PATH"); v != "" {
		cfg.Favicon.FontPath = v
	}
}

// Validate reports the first structural problem in c.
func (c *Config) Validate() error {
	for _, s := range c.Favicon.Sizes {
		if s <= 0 {
			return fmt.Errorf("favicon size %d must be positive", s)
		}
	}
	seen := make(map[string]bool)
	for _, v := range c.Favicon.Variants {
		if v.Name == "" {
			return fmt.Errorf("favicon variant without a name")
		}
		if seen[v.Name] {
			return fmt.Errorf("duplicate favicon variant %q", v.Name)
		}
		seen[v.Name] = true
	}
	if c.Favicon.ICOSize > maxICOSize {
		return fmt.Errorf("ico_size %d exceeds %d", c.Favicon.ICOSize, maxICOSize)
	}
	if c.Favicon.ICOSize > 0 && !seen[c.Favicon.ICOVariant] {
		return fmt.Errorf("ico_variant %q is not a configured favicon variant", c.Favicon.ICOVariant)
	}
	if c.QR.URL == "" {
		return fmt.Errorf("qr url must not be empty")
	}
	if _, err := qr.ParseLevel(c.QR.Level); err != nil {
		return err
	}
	seen = make(map[string]bool)
	for _, v := range c.QR.Variants {
		if v.Name == "" || v.File == "" {
			return fmt.Errorf("qr variant needs both name and file")
		}
		if seen[v.Name] {
			return fmt.Errorf("duplicate qr variant %q", v.Name)
		}
		seen[v.Name] = true
		if v.BoxSize <= 0 {
			return fmt.Errorf("qr variant %q: box_size must be positive", v.Name)
		}
		if v.Border < 0 {
			return fmt.Errorf("qr variant %q: border must not be negative", v.Name)
		}
		if _, err := qr.ParseShape(v.Shape); err != nil {
			return fmt.Errorf("qr variant %q: %w", v.Name, err)
		}
	}
	return nil
}

// FaviconVariant returns the variant named name.
func (c *Config) FaviconVariant(name string) (FaviconVariant, bool) {
	for _, v := range c.Favicon.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return FaviconVariant{}, false
}

// QRVariant returns the QR variant named name.
func (c *Config) QRVariant(name string) (QRVariant, bool) {
	for _, v := range c.QR.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return QRVariant{}, false
}

// FaviconFile returns the output file name for a variant at size. The
// primary size carries no size suffix.
func (c *Config) FaviconFile(variant string, size int) string {
	if size == c.Favicon.PrimarySize {
		return fmt.Sprintf("favicon-%s.png", variant)
	}
	return fmt.Sprintf("favicon-%s-%d.png", variant, size)
}

// EnsureDirs creates the output and data directories if they do not
// already exist.
func (c *Config) EnsureDirs() error {
	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir %s: %w", c.OutputDir, err)
	}
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir %s: %w", c.DataDir, err)
	}
	return nil
}
