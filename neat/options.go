// Package neat holds the ambient configuration, logging, and context-carrying
// machinery shared by every NEAT subsystem: the Options struct that parameterizes
// a run, its YAML/plain-text loaders, and a leveled logger.
package neat

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/arlowren/neatcore/neat/math"
)

// MutationRates groups the four structural/weight mutation probabilities applied,
// in this fixed order, by the Mutate orchestrator: add-node, add-connection,
// weight-mutation, toggle-enable.
type MutationRates struct {
	AddNodeRate          float64 `yaml:"add_node_rate"`
	AddConnectionRate    float64 `yaml:"add_connection_rate"`
	WeightMutationRate   float64 `yaml:"weight_mutation_rate"`
	ToggleConnectionRate float64 `yaml:"toggle_connection_rate"`
	PerturbationRate     float64 `yaml:"perturbation_rate"`
	PerturbationPower    float64 `yaml:"perturbation_power"`
}

// DefaultMutationRates returns the rates named in the governing specification's
// external-interfaces section.
func DefaultMutationRates() MutationRates {
	return MutationRates{
		AddNodeRate:          0.03,
		AddConnectionRate:    0.05,
		WeightMutationRate:   0.8,
		ToggleConnectionRate: 0.01,
		PerturbationRate:     0.9,
		PerturbationPower:    0.5,
	}
}

// Options is the full parameterization of a NEAT run: population shape,
// compatibility/crossover/mutation knobs, and the node activators available to
// the phenotype builder. Field names and the flat plain-text encoding follow the
// teacher's neat.Options/neat_options_readers.go.
type Options struct {
	// Network shape
	Inputs  int  `yaml:"inputs"`
	Outputs int  `yaml:"outputs"`
	Bias    bool `yaml:"bias"`

	// Population / generations
	PopSize        int `yaml:"pop_size"`
	NumGenerations int `yaml:"num_generations"`

	// Compatibility distance coefficients (c1, c2, c3 in the spec)
	ExcessCoeff     float64 `yaml:"excess_coeff"`
	DisjointCoeff   float64 `yaml:"disjoint_coeff"`
	MutdiffCoeff    float64 `yaml:"mutdiff_coeff"`
	CompatThreshold float64 `yaml:"compat_threshold"`

	// Reproduction
	Elitism                 int     `yaml:"elitism"`
	CrossoverRate           float64 `yaml:"crossover_rate"`
	SurvivalThresh          float64 `yaml:"survival_thresh"`
	DropOffAge              int     `yaml:"dropoff_age"`
	EnableStagnationCulling bool    `yaml:"enable_stagnation_culling"`

	Mutation MutationRates `yaml:"mutation_rates"`

	// Seed, when non-nil, is the deterministic RNG seed for the whole run.
	Seed *int64 `yaml:"seed"`

	// Node activators available to the phenotype builder, with selection
	// probabilities; defaults to steepened sigmoid only.
	NodeActivatorsWithProbs []string `yaml:"node_activators"`
	NodeActivators          []math.NodeActivationType
	NodeActivatorsProb      []float64

	LogLevel string `yaml:"log_level"`
}

// DefaultOptions returns the Options described by the governing specification's
// external-interfaces section (population_size=150, max_generations=500, ...).
func DefaultOptions() *Options {
	return &Options{
		Inputs:             3,
		Outputs:            1,
		Bias:               true,
		PopSize:            150,
		NumGenerations:     500,
		ExcessCoeff:        1.0,
		DisjointCoeff:      1.0,
		MutdiffCoeff:       0.4,
		CompatThreshold:    3.0,
		Elitism:            1,
		CrossoverRate:      0.7,
		SurvivalThresh:     0.2,
		DropOffAge:         15,
		Mutation:           DefaultMutationRates(),
		LogLevel:           "info",
		NodeActivators:     []math.NodeActivationType{math.SigmoidSteepenedActivation},
		NodeActivatorsProb: []float64{1.0},
	}
}

// Validate rejects structurally impossible configurations before a run starts.
func (o *Options) Validate() error {
	switch {
	case o.PopSize <= 0:
		return errors.New("pop_size must be positive")
	case o.Inputs <= 0:
		return errors.New("inputs must be positive")
	case o.Outputs <= 0:
		return errors.New("outputs must be positive")
	case o.CompatThreshold <= 0:
		return errors.New("compat_threshold must be positive")
	case o.Elitism < 0:
		return errors.New("elitism must not be negative")
	case o.CrossoverRate < 0 || o.CrossoverRate > 1:
		return errors.New("crossover_rate must be within [0, 1]")
	case o.Mutation.PerturbationRate < 0 || o.Mutation.PerturbationRate > 1:
		return errors.New("perturbation_rate must be within [0, 1]")
	}
	return nil
}

// NeatContext wraps this Options value into a context.Context, so it can travel
// alongside a cancellation signal through the evolution driver.
func (o *Options) NeatContext() context.Context {
	return NewContext(context.Background(), o)
}

// LoadYAMLOptions loads NEAT options encoded as YAML.
func LoadYAMLOptions(r io.Reader) (*Options, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	opts := DefaultOptions()
	if err = yaml.Unmarshal(content, opts); err != nil {
		return nil, errors.Wrap(err, "failed to decode NEAT options from YAML")
	}
	if err = InitLogger(opts.LogLevel); err != nil {
		return nil, errors.Wrap(err, "failed to initialize logger")
	}
	if err = opts.initNodeActivators(); err != nil {
		return nil, errors.Wrap(err, "failed to read node activators")
	}
	if err = opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid NEAT options")
	}
	return opts, nil
}

// LoadNeatOptions loads NEAT options from the legacy flat "name value" text
// format, coercing heterogeneous text fields with spf13/cast.
func LoadNeatOptions(r io.Reader) (*Options, error) {
	c := DefaultOptions()
	var name string
	var param string
	for {
		_, err := fmt.Fscanf(r, "%s %v\n", &name, &param)
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		switch name {
		case "excess_coeff":
			c.ExcessCoeff = cast.ToFloat64(param)
		case "disjoint_coeff":
			c.DisjointCoeff = cast.ToFloat64(param)
		case "mutdiff_coeff":
			c.MutdiffCoeff = cast.ToFloat64(param)
		case "compat_threshold":
			c.CompatThreshold = cast.ToFloat64(param)
		case "survival_thresh":
			c.SurvivalThresh = cast.ToFloat64(param)
		case "crossover_rate":
			c.CrossoverRate = cast.ToFloat64(param)
		case "add_node_rate":
			c.Mutation.AddNodeRate = cast.ToFloat64(param)
		case "add_connection_rate":
			c.Mutation.AddConnectionRate = cast.ToFloat64(param)
		case "weight_mutation_rate":
			c.Mutation.WeightMutationRate = cast.ToFloat64(param)
		case "toggle_connection_rate":
			c.Mutation.ToggleConnectionRate = cast.ToFloat64(param)
		case "perturbation_rate":
			c.Mutation.PerturbationRate = cast.ToFloat64(param)
		case "perturbation_power":
			c.Mutation.PerturbationPower = cast.ToFloat64(param)
		case "pop_size":
			c.PopSize = cast.ToInt(param)
		case "num_generations":
			c.NumGenerations = cast.ToInt(param)
		case "elitism":
			c.Elitism = cast.ToInt(param)
		case "dropoff_age":
			c.DropOffAge = cast.ToInt(param)
		case "inputs":
			c.Inputs = cast.ToInt(param)
		case "outputs":
			c.Outputs = cast.ToInt(param)
		case "bias":
			c.Bias = cast.ToBool(param)
		case "enable_stagnation_culling":
			c.EnableStagnationCulling = cast.ToBool(param)
		case "log_level":
			c.LogLevel = param
		default:
			return nil, errors.Errorf("unknown configuration parameter found: %s = %s", name, param)
		}
	}
	if err := InitLogger(c.LogLevel); err != nil {
		return nil, errors.Wrap(err, "failed to initialize logger")
	}
	if err := c.initNodeActivators(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ReadNeatOptionsFromFile reads NEAT options from configFilePath, choosing the
// YAML or plain-text decoder by file extension.
func ReadNeatOptionsFromFile(configFilePath string) (*Options, error) {
	configFile, err := os.Open(configFilePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open config file")
	}
	defer configFile.Close()
	if strings.HasSuffix(configFile.Name(), "yml") || strings.HasSuffix(configFile.Name(), "yaml") {
		return LoadYAMLOptions(configFile)
	}
	return LoadNeatOptions(configFile)
}

func (o *Options) initNodeActivators() error {
	if len(o.NodeActivatorsWithProbs) == 0 {
		o.NodeActivators = []math.NodeActivationType{math.SigmoidSteepenedActivation}
		o.NodeActivatorsProb = []float64{1.0}
		return nil
	}
	actFns := o.NodeActivatorsWithProbs
	o.NodeActivators = make([]math.NodeActivationType, len(actFns))
	o.NodeActivatorsProb = make([]float64, len(actFns))
	for i, line := range actFns {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return errors.Errorf("malformed node activator entry: %q", line)
		}
		var err error
		if o.NodeActivators[i], err = math.NodeActivators.ActivationTypeFromName(fields[0]); err != nil {
			return err
		}
		if o.NodeActivatorsProb[i], err = strconv.ParseFloat(fields[1], 64); err != nil {
			return err
		}
	}
	return nil
}
