// Package config loads settings from the environment, after an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pbaille/scribble/internal/animation"
	"github.com/pbaille/scribble/internal/capture"
	"github.com/pbaille/scribble/internal/logging"
	"github.com/pbaille/scribble/internal/mesh"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config value")

// Config holds the process settings.
type Config struct {
	DBPath         string
	Addr           string
	LogLevel       slog.Level
	MaxConns       int
	Snap           bool
	SnapRadius     float64
	StepDistance   float64
	RadialSegments int
	PlaybackSpeed  int
	SampleInterval time.Duration
}

// Default returns the built-in settings.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DBPath:         filepath.Join(home, ".scribble", "scribble.db"),
		Addr:           ":8080",
		LogLevel:       slog.LevelInfo,
		MaxConns:       64,
		SnapRadius:     0.03,
		StepDistance:   0.1,
		RadialSegments: mesh.DefaultOptions().RadialSegments,
		PlaybackSpeed:  animation.DefaultSpeed,
		SampleInterval: capture.DefaultSampleInterval,
	}
}

// Load reads .env files (default ".env") into the environment, without
// overriding variables already set, and then builds the config from the
// environment. A missing default .env is not an error; a missing file that
// was named explicitly is.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	} else if err := godotenv.Load(files...); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the config from SCRIBBLE_* variables over the defaults.
func FromEnv() (*Config, error) {
	c := Default()
	var err error

	c.DBPath = getEnv("SCRIBBLE_DB", c.DBPath)
	c.Addr = getEnv("SCRIBBLE_ADDR", c.Addr)
	if v := os.Getenv("SCRIBBLE_LOG_LEVEL"); v != "" {
		if c.LogLevel, err = logging.ParseLevel(v); err != nil {
			return nil, invalid("SCRIBBLE_LOG_LEVEL", err)
		}
	}
	if c.MaxConns, err = getEnvInt("SCRIBBLE_MAX_CONNS", c.MaxConns); err != nil {
		return nil, err
	}
	if c.Snap, err = getEnvBool("SCRIBBLE_SNAP", c.Snap); err != nil {
		return nil, err
	}
	if c.SnapRadius, err = getEnvFloat("SCRIBBLE_SNAP_RADIUS", c.SnapRadius); err != nil {
		return nil, err
	}
	if c.StepDistance, err = getEnvFloat("SCRIBBLE_STEP_DISTANCE", c.StepDistance); err != nil {
		return nil, err
	}
	if c.RadialSegments, err = getEnvInt("SCRIBBLE_RADIAL_SEGMENTS", c.RadialSegments); err != nil {
		return nil, err
	}
	if c.PlaybackSpeed, err = getEnvInt("SCRIBBLE_PLAYBACK_SPEED", c.PlaybackSpeed); err != nil {
		return nil, err
	}
	if v := os.Getenv("SCRIBBLE_SAMPLE_INTERVAL"); v != "" {
		if c.SampleInterval, err = time.ParseDuration(v); err != nil {
			return nil, invalid("SCRIBBLE_SAMPLE_INTERVAL", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.DBPath == "":
		return invalid("SCRIBBLE_DB", errors.New("empty path"))
	case c.MaxConns <= 0:
		return invalid("SCRIBBLE_MAX_CONNS", fmt.Errorf("%d is not positive", c.MaxConns))
	case c.SnapRadius < 0:
		return invalid("SCRIBBLE_SNAP_RADIUS", fmt.Errorf("%g is negative", c.SnapRadius))
	case c.StepDistance < 0:
		return invalid("SCRIBBLE_STEP_DISTANCE", fmt.Errorf("%g is negative", c.StepDistance))
	case c.RadialSegments < mesh.MinRadialSegments:
		return invalid("SCRIBBLE_RADIAL_SEGMENTS", fmt.Errorf("%d is below %d", c.RadialSegments, mesh.MinRadialSegments))
	case c.PlaybackSpeed < 0 || c.PlaybackSpeed >= len(animation.Speeds):
		return invalid("SCRIBBLE_PLAYBACK_SPEED", fmt.Errorf("%d is not in [0,%d)", c.PlaybackSpeed, len(animation.Speeds)))
	case c.SampleInterval <= 0:
		return invalid("SCRIBBLE_SAMPLE_INTERVAL", fmt.Errorf("%s is not positive", c.SampleInterval))
	}
	return nil
}

// Capture returns the capture engine settings for a drawing space.
// StepDistance is in world units, so plane drawings, which are in canvas
// pixels, are kept as sampled.
func (c *Config) Capture(space capture.Space) capture.Config {
	cc := capture.Config{
		Space:        space,
		Snap:         c.Snap,
		SnapRadius:   c.SnapRadius,
		StepDistance: c.StepDistance,
	}
	if space == capture.Plane {
		cc.StepDistance = 0
	}
	return cc
}

// Mesh returns the mesh options for story rendering.
func (c *Config) Mesh() mesh.Options {
	opt := mesh.DefaultOptions()
	opt.RadialSegments = c.RadialSegments
	return opt
}

func invalid(key string, err error) error {
	return fmt.Errorf("%w %s: %w", ErrInvalid, key, err)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, invalid(key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, invalid(key, err)
	}
	return f, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	switch value {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, invalid(key, fmt.Errorf("%q is not a boolean", value))
}
