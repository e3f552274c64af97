// Package config loads edge-mcp settings from a TOML file.
//
// A missing file path yields Default(). Keys absent from the file keep their
// default values; unknown keys are rejected so typos do not silently fall
// back to defaults.
//
//	log_level = "debug"
//
//	[pipeline]
//	kernel_size = 5
//	sigma = 1.4
//	distance_range = 3
//	weak = 0.05
//	strong = 0.1
//	radius = 2
//	border = "replicate"
//	engine = "go"
//
//	[server]
//	addr = ":8080"
//	shutdown_timeout = "5s"
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/ironsheep/edge-tools-mcp/internal/canny"
)

// EnvLogLevel names the environment variable that overrides LogLevel.
const EnvLogLevel = "EDGE_MCP_LOG_LEVEL"

// ErrInvalidConfig is returned for configuration values that fail validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete edge-mcp configuration.
type Config struct {
	LogLevel string   `toml:"log_level"`
	Pipeline Pipeline `toml:"pipeline"`
	Server   Server   `toml:"server"`
}

// Pipeline holds the detector parameters and the convolution backend.
type Pipeline struct {
	canny.Params
	Border string `toml:"border"`
	Engine string `toml:"engine"`
}

// Server configures the HTTP transport.
type Server struct {
	Addr            string        `toml:"addr"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Pipeline: Pipeline{
			Params: canny.DefaultParams(),
			Border: canny.BorderZero.String(),
			Engine: canny.EngineGo,
		},
		Server: Server{
			Addr:            "127.0.0.1:8080",
			ShutdownTimeout: 5 * time.Second,
		},
	}
}

// Load reads the TOML file at path on top of Default() and validates the
// result. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr must not be empty", ErrInvalidConfig)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: server.shutdown_timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Validate checks the detector parameters, the border name and the engine.
func (p Pipeline) Validate() error {
	if err := p.Params.Validate(); err != nil {
		return err
	}
	_, err := p.Convolver()
	return err
}

// Convolver returns the convolver selected by Engine and Border.
func (p Pipeline) Convolver() (canny.Convolver, error) {
	border, err := canny.ParseBorder(p.Border)
	if err != nil {
		return nil, err
	}
	return canny.NewConvolver(p.Engine, border)
}

// Level returns the configured log level. A valid env value, normally read
// from EnvLogLevel, takes precedence.
func (c Config) Level(env string) log.Level {
	if env != "" {
		if lvl, err := log.ParseLevel(env); err == nil {
			return lvl
		}
	}
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
