package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/verletsim/internal/sim"
	"github.com/san-kum/verletsim/internal/solver"
)

// Config is the on-disk configuration: solver tunables, the run section
// and the metrics to collect.
type Config struct {
	Solver  solver.Config `yaml:"solver"`
	Run     sim.Config    `yaml:"run"`
	Metrics []string      `yaml:"metrics,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Solver: solver.DefaultConfig(),
		Run:    sim.DefaultConfig(),
	}
}

// Load reads path over the defaults, so a file only needs the keys it
// changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	return errors.Join(c.Solver.Validate(), c.Run.Validate())
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Metrics = append([]string(nil), c.Metrics...)
	return &out
}
