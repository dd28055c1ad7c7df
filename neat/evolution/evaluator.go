package evolution

import (
	"context"
	"math"

	"github.com/arlowren/neatcore/neat/genetics"
	"github.com/arlowren/neatcore/neat/network"
)

// Evaluator populates the Fitness field of every genome in a population. It is
// the only suspension/blocking point in the driver: implementations may
// parallelize internally (worker goroutines, remote workers), but must return
// the same genomes in the same order.
type Evaluator interface {
	EvaluateAll(ctx context.Context, problem Problem, genomes []*genetics.Genome) (failures int, err error)
}

// SequentialEvaluator builds each genome's phenotype with network.Build and
// scores it with the problem's FitnessFunction, one genome at a time. A
// genome whose phenotype fails to build (e.g. a cycle under
// network.CycleDetected) is not fatal to the run: per spec.md §7's
// EvaluatorFailure policy, it receives fitness -Inf and is counted as a
// failure, surviving into speciation but excluded from elitism and offspring
// allocation.
type SequentialEvaluator struct{}

func (SequentialEvaluator) EvaluateAll(ctx context.Context, problem Problem, genomes []*genetics.Genome) (int, error) {
	failures := 0
	for _, g := range genomes {
		if err := ctx.Err(); err != nil {
			return failures, err
		}
		n, err := network.Build(g, problem.BuildOptions)
		if err != nil {
			g.Fitness = math.Inf(-1)
			failures++
			continue
		}
		g.Fitness = problem.FitnessFunction(g, n)
	}
	return failures, nil
}

// ParallelEvaluator runs SequentialEvaluator's per-genome work across a fixed
// worker pool. Each worker owns a private slice of the genome list, so no
// two goroutines ever build or score the same genome.
type ParallelEvaluator struct {
	Workers int
}

func (p ParallelEvaluator) EvaluateAll(ctx context.Context, problem Problem, genomes []*genetics.Genome) (int, error) {
	workers := p.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(genomes) {
		workers = len(genomes)
	}
	if workers == 0 {
		return 0, nil
	}

	type result struct {
		failures int
		err      error
	}
	results := make(chan result, workers)

	chunk := (len(genomes) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= len(genomes) {
			results <- result{}
			continue
		}
		if end > len(genomes) {
			end = len(genomes)
		}
		go func(slice []*genetics.Genome) {
			f, err := (SequentialEvaluator{}).EvaluateAll(ctx, problem, slice)
			results <- result{failures: f, err: err}
		}(genomes[start:end])
	}

	totalFailures := 0
	var firstErr error
	for w := 0; w < workers; w++ {
		r := <-results
		totalFailures += r.failures
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}
	}
	return totalFailures, firstErr
}
