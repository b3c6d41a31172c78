package httpapi

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chronoplan/go-jetlag"
)

// Config is the jetlag-calc configuration file, shared by the CLI and
// the server.
type Config struct {
	// Addr is the listen address of the serve subcommand.
	Addr string `yaml:"addr"`
	// Debug enables error tracebacks in responses. The CALC_DEBUG
	// environment variable overrides it.
	Debug bool `yaml:"debug"`
	// ClipPolicy selects how travel clips sleep windows: earliest,
	// largest or reject.
	ClipPolicy string `yaml:"clipPolicy"`
	// RasterStepMinutes is the default slot width of the rasterize
	// subcommand.
	RasterStepMinutes int `yaml:"rasterStepMinutes"`
	// ReadTimeoutSeconds bounds request reads on the server.
	ReadTimeoutSeconds int `yaml:"readTimeoutSeconds"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Addr:               ":8089",
		ClipPolicy:         string(jetlag.ClipEarliest),
		RasterStepMinutes:  30,
		ReadTimeoutSeconds: 30,
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if _, err := cfg.clipPolicy(); err != nil {
		return Config{}, err
	}
	if cfg.RasterStepMinutes <= 0 {
		return Config{}, fmt.Errorf("rasterStepMinutes must be positive, got %d", cfg.RasterStepMinutes)
	}
	return cfg, nil
}

func (c Config) clipPolicy() (jetlag.ClipPolicy, error) {
	switch jetlag.ClipPolicy(c.ClipPolicy) {
	case "", jetlag.ClipEarliest:
		return jetlag.ClipEarliest, nil
	case jetlag.ClipLargest:
		return jetlag.ClipLargest, nil
	case jetlag.ClipReject:
		return jetlag.ClipReject, nil
	default:
		return "", fmt.Errorf("unknown clip policy %q", c.ClipPolicy)
	}
}

// RasterStep is the configured slot width as a duration.
func (c Config) RasterStep() time.Duration {
	return time.Duration(c.RasterStepMinutes) * time.Minute
}

// DebugEnabled folds the CALC_DEBUG environment toggle over the file
// setting.
func (c Config) DebugEnabled() bool {
	if v := os.Getenv("CALC_DEBUG"); v != "" && v != "0" {
		return true
	}
	return c.Debug
}
