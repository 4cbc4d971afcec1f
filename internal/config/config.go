package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/herd/internal/core/world"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config is the full run configuration, loadable from YAML.
type Config struct {
	Simulation Simulation   `yaml:"simulation"`
	World      world.Params `yaml:"world"`
	Server     Server       `yaml:"server"`
	Log        Log          `yaml:"log"`
}

// Simulation controls the update loop and the population.
type Simulation struct {
	Agents     int    `yaml:"agents" validate:"gte=1,lte=100000"`
	NamePrefix string `yaml:"name_prefix" validate:"required"`
	Seed       uint64 `yaml:"seed"`
	// TickRate is the number of ticks per simulated second.
	TickRate int `yaml:"tick_rate" validate:"gte=1,lte=1000"`
	// Workers bounds parallel agent ticks. 0 or 1 ticks agents serially.
	Workers int `yaml:"workers" validate:"gte=0,lte=1024"`
}

// Server configures the observer endpoint.
type Server struct {
	Enabled           bool          `yaml:"enabled"`
	ListenAddr        string        `yaml:"listen_addr" validate:"required"`
	BroadcastInterval time.Duration `yaml:"broadcast_interval" validate:"gt=0"`
	MaxClients        int           `yaml:"max_clients" validate:"gte=1"`
}

// Log configures the logger.
type Log struct {
	Level    string `yaml:"level" validate:"oneof=debug info warn error fatal"`
	Encoding string `yaml:"encoding" validate:"oneof=json console"`
}

// Default returns the configuration of the reference demo: three grazers at 60 ticks per second.
func Default() Config {
	return Config{
		Simulation: Simulation{
			Agents:     3,
			NamePrefix: "grazer",
			Seed:       1,
			TickRate:   60,
			Workers:    1,
		},
		World: world.DefaultParams(),
		Server: Server{
			Enabled:           false,
			ListenAddr:        "127.0.0.1:8080",
			BroadcastInterval: 100 * time.Millisecond,
			MaxClients:        64,
		},
		Log: Log{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// TickInterval is the simulated time covered by one tick.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Simulation.TickRate)
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads YAML from r over the defaults and validates the result. Unknown keys are
// rejected; an empty document yields the defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
