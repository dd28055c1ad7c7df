package evolution

import (
	"github.com/arlowren/neatcore/neat/genetics"
	"github.com/arlowren/neatcore/neat/network"
)

// FitnessFunc scores one genome's phenotype. It must be a pure function of its
// inputs: the evaluator may run it concurrently across genomes, and the core
// requires deterministic results for a deterministic problem.
type FitnessFunc func(g *genetics.Genome, n *network.Network) float64

// TerminationFunc inspects the population (sorted descending by fitness, best
// first) at the end of a generation and reports whether the run should stop.
type TerminationFunc func(sorted []*genetics.Genome, generation int) bool

// Problem is everything the driver needs to know about what it's evolving:
// a name for logging, how to score a genome, when to stop early, and
// (optionally) how to parallelize evaluation.
type Problem struct {
	Name            string
	FitnessFunction FitnessFunc
	Termination     TerminationFunc
	BuildOptions    network.BuildOptions

	// Evaluator defaults to SequentialEvaluator when nil.
	Evaluator Evaluator
}
