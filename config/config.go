// Package config loads the YAML configuration of a
// training run.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/byteshadow/EasyCNTK"
	"github.com/byteshadow/EasyCNTK/fit"
	"github.com/byteshadow/EasyCNTK/sgd"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/anyvec/anyvec64"
	"gopkg.in/yaml.v3"
)

// Tasks accepted in the task field.
const (
	TaskRegression = "regression"
	TaskBinary     = "binary"
	TaskMultiClass = "multiclass"
	TaskMultiLabel = "multilabel"
)

// Config captures the knobs for a training run.
type Config struct {
	Data     string `yaml:"data"`
	InputDim int    `yaml:"input_dim"`
	ModelOut string `yaml:"model_out"`

	BatchSize int   `yaml:"batch_size"`
	Epochs    int   `yaml:"epochs"`
	Hidden    []int `yaml:"hidden"`

	Activation string `yaml:"activation"`
	Float64    bool   `yaml:"float64"`

	Optimizer     string  `yaml:"optimizer"`
	LearningRate  float64 `yaml:"learning_rate"`
	PerSampleRate bool    `yaml:"per_sample_rate"`
	Momentum      float64 `yaml:"momentum"`
	LRStepEvery   int     `yaml:"lr_step_every"`
	LRStepFactor  float64 `yaml:"lr_step_factor"`
	Patience      int     `yaml:"patience"`

	Shuffle         bool    `yaml:"shuffle"`
	Seed            int64   `yaml:"seed"`
	ValidationRatio float64 `yaml:"validation_ratio"`

	Task      string  `yaml:"task"`
	Threshold float64 `yaml:"threshold"`

	MaxRetries       int  `yaml:"max_retries"`
	DegradeOnFailure bool `yaml:"degrade_on_failure"`
}

// Overrides captures CLI supplied values.
// Zero values leave the config untouched.
type Overrides struct {
	Data         string
	ModelOut     string
	Epochs       int
	BatchSize    int
	LearningRate float64
	Optimizer    string
	Seed         int64
}

// Default returns a config with every optional field set
// to its default.
func Default() *Config {
	return &Config{
		BatchSize:    32,
		Epochs:       10,
		Activation:   "tanh",
		Optimizer:    sgd.MethodAdam,
		LearningRate: 0.001,
		LRStepFactor: 0.5,
		Task:         TaskRegression,
		Threshold:    0.5,
	}
}

// Load reads and validates a Config from a YAML file.
// Missing fields keep the values from Default.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a YAML config without validating it.
// Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Data != "" {
		c.Data = o.Data
	}
	if o.ModelOut != "" {
		c.ModelOut = o.ModelOut
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Optimizer != "" {
		c.Optimizer = o.Optimizer
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
}

// Validate verifies that the config is runnable.
// Every failure is an easycntk.ErrConfiguration.
func (c *Config) Validate() error {
	if c == nil {
		return easycntk.ConfigErrorf("config is nil")
	}
	if c.Data == "" {
		return easycntk.ConfigErrorf("data must be set")
	}
	if c.InputDim <= 0 {
		return easycntk.ConfigErrorf("input_dim must be > 0 (got %d)", c.InputDim)
	}
	if c.BatchSize <= 0 {
		return easycntk.ConfigErrorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.Epochs <= 0 {
		return easycntk.ConfigErrorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	for i, h := range c.Hidden {
		if h <= 0 {
			return easycntk.ConfigErrorf("hidden[%d] must be > 0 (got %d)", i, h)
		}
	}
	if _, err := easycntk.ParseActivation(c.Activation); err != nil {
		return err
	}
	if _, err := c.NewOptimizer(); err != nil {
		return err
	}
	if c.LRStepEvery < 0 {
		return easycntk.ConfigErrorf("lr_step_every must be >= 0 (got %d)", c.LRStepEvery)
	}
	if c.Patience < 0 {
		return easycntk.ConfigErrorf("patience must be >= 0 (got %d)", c.Patience)
	}
	if c.ValidationRatio < 0 || c.ValidationRatio >= 1 {
		return easycntk.ConfigErrorf("validation_ratio must be in [0, 1) (got %g)",
			c.ValidationRatio)
	}
	c.Task = strings.ToLower(c.Task)
	switch c.Task {
	case TaskRegression, TaskBinary, TaskMultiClass, TaskMultiLabel:
	default:
		return easycntk.ConfigErrorf("unknown task: %s", c.Task)
	}
	if !(c.Threshold > 0 && c.Threshold < 1) {
		return easycntk.ConfigErrorf("threshold must be in (0, 1) (got %g)", c.Threshold)
	}
	return nil
}

// Creator returns the vector creator for the configured
// numeric type.
func (c *Config) Creator() anyvec.Creator {
	if c.Float64 {
		return anyvec64.DefaultCreator{}
	}
	return anyvec32.CurrentCreator()
}

// NewOptimizer creates an unbound optimizer.
func (c *Config) NewOptimizer() (*sgd.Optimizer, error) {
	o, err := sgd.New(c.Optimizer, c.LearningRate, c.Momentum)
	if err != nil {
		return nil, err
	}
	o.PerSample = c.PerSampleRate
	return o, nil
}

// RateRule returns the configured learning rate rule, or
// nil if the rate is constant.
func (c *Config) RateRule() fit.RateRule {
	if c.LRStepEvery == 0 {
		return nil
	}
	return fit.StepDecay(c.LRStepEvery, c.LRStepFactor)
}

// StopFunc returns the configured stop predicate, or nil
// if training always runs for every epoch.
func (c *Config) StopFunc() fit.StopFunc {
	if c.Patience == 0 {
		return nil
	}
	return fit.Plateau(c.Patience, 0)
}
