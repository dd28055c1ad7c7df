// Package evolution runs the generational loop over neat/genetics: evaluate,
// speciate, reproduce, repeat — until the problem's termination predicate
// fires, max_generations is reached, or the caller cancels via context.
package evolution

import (
	"context"
	"math/rand"
	"sort"

	"github.com/pkg/errors"

	"github.com/arlowren/neatcore/neat"
	"github.com/arlowren/neatcore/neat/genetics"
	"github.com/arlowren/neatcore/neat/innovation"
)

// ErrEmptyPopulation is returned when a generation's reproduction pipeline
// produces no survivors (every species excluded from offspring allocation).
var ErrEmptyPopulation = errors.New("evolution: empty population")

// Run executes one full NEAT run synchronously, per spec.md §4.6: evaluate,
// record statistics, check termination, speciate, reproduce, loop. It checks
// ctx for cancellation between generations (cooperative cancellation per
// spec.md §5) and always returns the best genome seen so far, however the run
// ended.
func Run(ctx context.Context, problem Problem, opts *neat.Options) (*genetics.Genome, *Statistics, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}

	evaluator := problem.Evaluator
	if evaluator == nil {
		evaluator = SequentialEvaluator{}
	}

	seed := int64(1)
	if opts.Seed != nil {
		seed = *opts.Seed
	}

	reg := innovation.New(firstHiddenID(opts))
	speciesReg := genetics.NewRegistry(opts.CompatThreshold, genetics.CompatibilityCoefficients{
		Excess:     opts.ExcessCoeff,
		Disjoint:   opts.DisjointCoeff,
		WeightDiff: opts.MutdiffCoeff,
	})
	speciesReg.EnableStagnationCulling = opts.EnableStagnationCulling
	speciesReg.DropOffAge = opts.DropOffAge

	nextID := idGenerator(opts.PopSize)
	rng := deriveRand(seed, 0)

	population := make([]*genetics.Genome, opts.PopSize)
	for i := range population {
		population[i] = genetics.NewMinimalGenome(nextID(), opts.Inputs, opts.Outputs, opts.Bias, reg, rng)
	}

	stats := &Statistics{}
	repro := genetics.ReproductionOptions{
		Elitism:       opts.Elitism,
		CrossoverRate: opts.CrossoverRate,
		Mutation: genetics.MutationRates{
			AddNode:           opts.Mutation.AddNodeRate,
			AddConnection:     opts.Mutation.AddConnectionRate,
			WeightMutation:    opts.Mutation.WeightMutationRate,
			ToggleConnection:  opts.Mutation.ToggleConnectionRate,
			PerturbationRate:  opts.Mutation.PerturbationRate,
			PerturbationPower: opts.Mutation.PerturbationPower,
			Activators:        opts.NodeActivators,
			ActivatorProbs:    opts.NodeActivatorsProb,
		},
	}

	var best *genetics.Genome
	for generation := 0; ; generation++ {
		genRand := deriveRand(seed, generation)

		failures, err := evaluator.EvaluateAll(ctx, problem, population)
		if err != nil {
			return best, stats, err
		}
		stats.EvaluatorFailures += failures

		sort.Slice(population, func(i, j int) bool { return population[i].Fitness > population[j].Fitness })
		if len(population) == 0 {
			return best, stats, ErrEmptyPopulation
		}
		if best == nil || population[0].Fitness > best.Fitness {
			best = population[0].Clone()
		}

		species := speciesReg.Speciate(population, genRand)
		fitnesses := make([]float64, len(population))
		for i, g := range population {
			fitnesses[i] = g.Fitness
		}
		stats.Record(generation, fitnesses, len(species))

		neat.InfoLog(problem.Name + ": " + stats.Generations[len(stats.Generations)-1].String())

		done := generation >= opts.NumGenerations
		if problem.Termination != nil && problem.Termination(population, generation) {
			done = true
		}
		if done {
			return best, stats, nil
		}

		if err := ctx.Err(); err != nil {
			return best, stats, nil
		}

		active := activeSpecies(species, speciesReg)
		offspring := genetics.Reproduce(active, opts.PopSize, reg, nextID, repro, genRand)
		if len(offspring) == 0 {
			return best, stats, ErrEmptyPopulation
		}
		population = offspring
	}
}

// activeSpecies drops species the stagnation-culling extension has flagged,
// when enabled; otherwise returns species unchanged.
func activeSpecies(species []*genetics.Species, reg *genetics.Registry) []*genetics.Species {
	if !reg.EnableStagnationCulling {
		return species
	}
	active := make([]*genetics.Species, 0, len(species))
	for _, sp := range species {
		if !reg.IsStagnant(sp) {
			active = append(active, sp)
		}
	}
	if len(active) == 0 {
		return species // never cull every species into extinction
	}
	return active
}

// firstHiddenID computes the smallest node id available for a freshly minted
// hidden node in the minimal-construction id space: inputs, then bias (if
// any), then outputs occupy [0, firstHiddenID).
func firstHiddenID(opts *neat.Options) uint32 {
	id := opts.Inputs
	if opts.Bias {
		id++
	}
	id += opts.Outputs
	return uint32(id)
}

// idGenerator returns a monotonically increasing genome id source, seeded past
// the initial population so reproduction never collides with a founder id.
func idGenerator(popSize int) func() int {
	n := popSize
	return func() int {
		n++
		return n
	}
}

// deriveRand produces the seeded random stream for one generation. Go's
// math/rand does not expose a Rand's internal state for serialization, so
// reproducibility across a checkpoint/resume is achieved by keying each
// generation's stream off (seed, generation) instead of persisting live RNG
// state — see Checkpoint's doc comment and DESIGN.md.
func deriveRand(seed int64, generation int) *rand.Rand {
	const mix uint64 = 0x9E3779B97F4A7C15 // splitmix64 golden-ratio constant
	combined := int64(uint64(seed) ^ (uint64(generation)+1)*mix)
	return rand.New(rand.NewSource(combined))
}
