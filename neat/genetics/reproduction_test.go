package genetics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlowren/neatcore/neat/innovation"
)

func membersWithFitness(speciesID int, n int, fitness float64) []*Genome {
	members := make([]*Genome, n)
	for i := range members {
		members[i] = &Genome{ID: i + 1, Fitness: fitness, SpeciesID: speciesID}
	}
	return members
}

func TestAllocateOffspringS5Split(t *testing.T) {
	// S5: two species of size 10 and 2, equal raw fitness 10 per member, target
	// population 12 -> summed adjusted fitness is 10 for each species, so an
	// even 6/6 split.
	big := &Species{ID: 1, Members: membersWithFitness(1, 10, 10)}
	small := &Species{ID: 2, Members: membersWithFitness(2, 2, 10)}

	sums := map[int]float64{
		big.ID:   adjustedFitnessSum(big),
		small.ID: adjustedFitnessSum(small),
	}
	alloc := allocateOffspring([]*Species{big, small}, sums, 12)

	assert.Equal(t, 6, alloc[big.ID])
	assert.Equal(t, 6, alloc[small.ID])
	assert.Equal(t, 12, alloc[big.ID]+alloc[small.ID])
}

func TestAllocateOffspringReconcilesToExactTarget(t *testing.T) {
	species := []*Species{
		{ID: 1, Members: membersWithFitness(1, 3, 7)},
		{ID: 2, Members: membersWithFitness(2, 5, 3)},
		{ID: 3, Members: membersWithFitness(3, 1, 11)},
	}
	sums := make(map[int]float64, len(species))
	for _, sp := range species {
		sums[sp.ID] = adjustedFitnessSum(sp)
	}
	for _, target := range []int{1, 7, 50, 150} {
		alloc := allocateOffspring(species, sums, target)
		total := 0
		for _, sp := range species {
			total += alloc[sp.ID]
		}
		assert.Equal(t, target, total, "target %d", target)
	}
}

func TestAllocateOffspringZeroSumSplitsEqually(t *testing.T) {
	species := []*Species{
		{ID: 1, Members: membersWithFitness(1, 2, 0)},
		{ID: 2, Members: membersWithFitness(2, 2, 0)},
	}
	sums := map[int]float64{1: 0, 2: 0}
	alloc := allocateOffspring(species, sums, 10)
	assert.Equal(t, 5, alloc[1])
	assert.Equal(t, 5, alloc[2])
}

func TestTournamentSelectReturnsFittestOfSample(t *testing.T) {
	pool := []*Genome{
		{ID: 1, Fitness: 1},
		{ID: 2, Fitness: 2},
		{ID: 3, Fitness: 100},
	}
	rng := rand.New(rand.NewSource(1))
	seenBest := false
	for i := 0; i < 50; i++ {
		winner := tournamentSelect(pool, rng)
		if winner.ID == 3 {
			seenBest = true
		}
	}
	assert.True(t, seenBest, "fittest genome should win at least one tournament out of 50")
}

func TestReproducePreservesPopulationSize(t *testing.T) {
	reg := innovation.New(4)
	rng := rand.New(rand.NewSource(1))

	seed := NewMinimalGenome(1, 2, 1, false, reg, rng)
	sp1 := &Species{ID: 1, Members: []*Genome{
		withFitness(seed.Clone(), 3), withFitness(seed.Clone(), 5), withFitness(seed.Clone(), 1),
	}}
	sp2 := &Species{ID: 2, Members: []*Genome{
		withFitness(seed.Clone(), 4), withFitness(seed.Clone(), 2),
	}}

	nextID := idCounter(100)
	opts := ReproductionOptions{
		Elitism:       1,
		CrossoverRate: 0.5,
		Mutation:      MutationRates{AddNode: 0.1, AddConnection: 0.1, WeightMutation: 0.5, ToggleConnection: 0.05, PerturbationRate: 0.5, PerturbationPower: 1},
	}

	offspring := Reproduce([]*Species{sp1, sp2}, 20, reg, nextID, opts, rng)
	require.Len(t, offspring, 20)

	ids := make(map[int]bool)
	for _, g := range offspring {
		require.False(t, ids[g.ID], "duplicate offspring id %d", g.ID)
		ids[g.ID] = true
	}
}

func withFitness(g *Genome, f float64) *Genome {
	g.Fitness = f
	return g
}

func idCounter(start int) func() int {
	n := start
	return func() int {
		n++
		return n
	}
}
