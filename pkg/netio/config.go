package netio

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-infoflow/pkg/flow"
	"github.com/dd0wney/cluso-infoflow/pkg/graph"
	"github.com/dd0wney/cluso-infoflow/pkg/optimize"
)

var validate = validator.New()

// Config is the YAML-loadable run configuration consumed by the CLI.
type Config struct {
	Input  string `yaml:"input" validate:"required"`
	Format string `yaml:"format" validate:"omitempty,oneof=edgelist pajek"`
	Output string `yaml:"output"`

	FlowModel string `yaml:"flowModel" validate:"omitempty,oneof=undirected undirdir directed rawdir outdirdir"`
	// UndirDir is a shortcut that forces the undirdir flow model.
	UndirDir                 bool    `yaml:"undirdir"`
	TeleportationProbability float64 `yaml:"teleportationProbability" validate:"gte=0,lte=1"`
	RecordedTeleportation    *bool   `yaml:"recordedTeleportation"`
	TeleportToNodes          bool    `yaml:"teleportToNodes"`
	MaxPowerIterations       int     `yaml:"maxPowerIterations" validate:"gte=0"`
	PowerConvergenceTol      float64 `yaml:"powerConvergenceTol" validate:"gte=0"`
	NormalizationTol         float64 `yaml:"normalizationTol" validate:"gte=0"`

	Trials    int    `yaml:"trials" validate:"gte=0"`
	Seed      uint64 `yaml:"seed"`
	UseMemory bool   `yaml:"useMemory"`
}

// DefaultConfig returns the default run configuration.
func DefaultConfig() *Config {
	return &Config{
		Format:                   string(FormatEdgeList),
		FlowModel:                "undirected",
		TeleportationProbability: 0.15,
		Trials:                   1,
	}
}

// LoadConfig reads and validates a YAML config file on top of the
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// FlowOptions converts the config into flow solver options.
func (c *Config) FlowOptions() (flow.Options, error) {
	opts := flow.DefaultOptions()
	model, err := graph.ParseFlowModel(c.FlowModel)
	if err != nil {
		return opts, err
	}
	opts.Model = model
	if c.UndirDir {
		opts.Model = graph.FlowUndirDir
	}
	opts.TeleportationProbability = c.TeleportationProbability
	if c.RecordedTeleportation != nil {
		opts.RecordedTeleportation = *c.RecordedTeleportation
	}
	opts.TeleportToNodes = c.TeleportToNodes
	if c.MaxPowerIterations > 0 {
		opts.MaxPowerIterations = c.MaxPowerIterations
	}
	if c.PowerConvergenceTol > 0 {
		opts.PowerConvergenceTol = c.PowerConvergenceTol
	}
	if c.NormalizationTol > 0 {
		opts.NormalizationTol = c.NormalizationTol
	}
	opts.Seed = c.Seed
	return opts, nil
}

// TrialsOptions converts the config into optimizer trial options.
func (c *Config) TrialsOptions() optimize.TrialsOptions {
	opts := optimize.DefaultTrialsOptions()
	if c.Trials > 0 {
		opts.Trials = c.Trials
	}
	opts.BaseSeed = c.Seed
	opts.Optimize.UseMemory = c.UseMemory
	return opts
}
