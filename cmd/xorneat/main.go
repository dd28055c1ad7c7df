// Command xorneat is a runnable demonstration of wiring evolution.Run to a
// Problem, grounded on the teacher's xor_runner.go. It is not a product: it
// exists to show the external interface end to end.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/arlowren/neatcore/neat"
	"github.com/arlowren/neatcore/neat/evolution"
	"github.com/arlowren/neatcore/neat/genetics"
	"github.com/arlowren/neatcore/neat/network"
)

// xorPatterns are the four XOR truth-table rows: two inputs, one target.
var xorPatterns = [][3]float64{
	{0, 0, 0},
	{0, 1, 1},
	{1, 0, 1},
	{1, 1, 0},
}

func xorFitness(_ *genetics.Genome, n *network.Network) float64 {
	var errSq float64
	for _, p := range xorPatterns {
		out, err := n.Activate([]float64{p[0], p[1]})
		if err != nil {
			return 0
		}
		d := p[2] - out[0]
		errSq += d * d
	}
	return 4.0 - errSq
}

func xorSolved(sorted []*genetics.Genome, _ int) bool {
	return len(sorted) > 0 && sorted[0].Fitness >= 3.9
}

func main() {
	seed := time.Now().UnixNano()
	if len(os.Args) > 1 {
		fmt.Sscanf(os.Args[1], "%d", &seed)
	}

	opts := neat.DefaultOptions()
	opts.Inputs = 2
	opts.Outputs = 1
	opts.Bias = true
	opts.PopSize = 150
	opts.NumGenerations = 300
	opts.Seed = &seed
	if err := neat.InitLogger(opts.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		os.Exit(1)
	}

	problem := evolution.Problem{
		Name:            "xor",
		FitnessFunction: xorFitness,
		Termination:     xorSolved,
	}

	best, stats, err := evolution.Run(context.Background(), problem, opts)
	if err != nil {
		fmt.Println("XOR run failed:", err)
		os.Exit(1)
	}

	fmt.Printf("best fitness %.4f after %d generations (seed %d)\n",
		best.Fitness, len(stats.Generations), seed)
}
