package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/arenaclock/go/internal/display"
)

var ErrInvalidConfig = errors.New("invalid config")

// MaxSideDisplays is the most side copies a hoop carries.
const MaxSideDisplays = 2

type Config struct {
	Port         string        `yaml:"port"`
	LogLevel     string        `yaml:"log_level"`
	TickInterval time.Duration `yaml:"tick_interval"`
	Display      DisplayConfig `yaml:"display"`
	NATS         NATSConfig    `yaml:"nats"`
}

type DisplayConfig struct {
	FontSize       int    `yaml:"font_size"`
	GameClockColor string `yaml:"game_clock_color"`
	ShotClockColor string `yaml:"shot_clock_color"`
	SideDisplays   int    `yaml:"side_displays"`
}

// NATSConfig enables texture update publishing when URL is set.
type NATSConfig struct {
	URL           string `yaml:"url"`
	StreamName    string `yaml:"stream_name"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

func Default() Config {
	return Config{
		Port:         "8080",
		LogLevel:     "info",
		TickInterval: time.Second,
		Display: DisplayConfig{
			FontSize:       display.FontSize,
			GameClockColor: "#dc8e50",
			ShotClockColor: "#f44341",
			SideDisplays:   MaxSideDisplays,
		},
		NATS: NATSConfig{
			StreamName:    "ARENA_CLOCK",
			SubjectPrefix: "arena.clock",
		},
	}
}

// Load reads defaults, then the YAML file at path (if path is not empty), then
// the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("ARENA_PORT", c.Port)
	c.LogLevel = getEnv("ARENA_LOG_LEVEL", c.LogLevel)
	c.TickInterval = getEnvAsDuration("ARENA_TICK_INTERVAL", c.TickInterval)
	c.Display.SideDisplays = getEnvAsInt("ARENA_SIDE_DISPLAYS", c.Display.SideDisplays)
	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%w: port is required", ErrInvalidConfig)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive, got %s", ErrInvalidConfig, c.TickInterval)
	}
	if c.Display.FontSize <= 0 {
		return fmt.Errorf("%w: font size must be positive, got %d", ErrInvalidConfig, c.Display.FontSize)
	}
	if c.Display.SideDisplays < 0 || c.Display.SideDisplays > MaxSideDisplays {
		return fmt.Errorf("%w: side displays must be between 0 and %d, got %d", ErrInvalidConfig, MaxSideDisplays, c.Display.SideDisplays)
	}
	if _, err := ParseHexColor(c.Display.GameClockColor); err != nil {
		return fmt.Errorf("%w: game clock color: %v", ErrInvalidConfig, err)
	}
	if _, err := ParseHexColor(c.Display.ShotClockColor); err != nil {
		return fmt.Errorf("%w: shot clock color: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Level returns the parsed zerolog level.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Style returns the display style for a validated config.
func (c Config) Style() display.Style {
	s := display.DefaultStyle()
	s.FontSize = c.Display.FontSize
	s.LineOffset = float64(c.Display.FontSize) / 4
	if col, err := ParseHexColor(c.Display.GameClockColor); err == nil {
		s.GameColor = col
	}
	if col, err := ParseHexColor(c.Display.ShotClockColor); err == nil {
		s.ShotColor = col
	}
	return s
}

// ParseHexColor parses "#rrggbb".
func ParseHexColor(v string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(v), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("color %q is not #rrggbb", v)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", v, err)
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
