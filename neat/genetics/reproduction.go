package genetics

import (
	"math/rand"
	"sort"

	"github.com/arlowren/neatcore/neat/innovation"
)

// ReproductionOptions parameterizes the offspring pipeline: how many elites per
// species survive unchanged, the odds of sexual vs. asexual reproduction, and
// the mutation/crossover knobs passed down to the per-child operators.
type ReproductionOptions struct {
	Elitism       int
	CrossoverRate float64
	Mutation      MutationRates
	Crossover     CrossoverOptions
}

// tournamentSize is the fixed tournament size (best-of-3) used for intra-species
// parent selection.
const tournamentSize = 3

// adjustedFitnessSum returns the sum of adjusted fitness (raw fitness divided by
// species size — fitness sharing) over a species' members, and sets each
// member's AdjustedFitness field as a side effect.
func adjustedFitnessSum(sp *Species) float64 {
	n := float64(len(sp.Members))
	var sum float64
	for _, m := range sp.Members {
		m.AdjustedFitness = m.Fitness / n
		sum += m.AdjustedFitness
	}
	return sum
}

// allocateOffspring computes how many offspring each species in active gets,
// for a target total of popSize. Every species passed in takes part; dropping
// species with non-positive summed adjusted fitness (Reproduce) or, when
// stagnation culling is enabled, stagnant species (evolution.Run) is done by
// the callers before this is reached. Ties are broken by ascending species id
// so runs are reproducible under a fixed seed.
func allocateOffspring(active []*Species, sums map[int]float64, popSize int) map[int]int {
	alloc := make(map[int]int, len(active))
	if len(active) == 0 {
		return alloc
	}

	var total float64
	for _, sp := range active {
		total += sums[sp.ID]
	}

	if total <= 0 {
		equal := popSize / len(active)
		for _, sp := range active {
			alloc[sp.ID] = equal
		}
	} else {
		for _, sp := range active {
			share := int(sums[sp.ID] / total * float64(popSize))
			if share < 1 {
				share = 1
			}
			alloc[sp.ID] = share
		}
	}

	reconcile(alloc, active, popSize)
	return alloc
}

// reconcile adjusts alloc in place so the total equals target exactly, per the
// governing specification's rounding-reconciliation rule. Unlike the source
// (which reuses a stale sorted list across decrement iterations and can
// therefore fail to converge), this re-derives the sort order on every
// iteration.
func reconcile(alloc map[int]int, active []*Species, target int) {
	sum := func() int {
		s := 0
		for _, sp := range active {
			s += alloc[sp.ID]
		}
		return s
	}

	for sum() < target {
		largestID, largestVal := active[0].ID, alloc[active[0].ID]
		for _, sp := range active {
			if alloc[sp.ID] > largestVal {
				largestID, largestVal = sp.ID, alloc[sp.ID]
			}
		}
		alloc[largestID]++
	}
	for sum() > target {
		smallestID, smallestVal := -1, int(^uint(0)>>1)
		for _, sp := range active {
			if alloc[sp.ID] > 1 && alloc[sp.ID] < smallestVal {
				smallestID, smallestVal = sp.ID, alloc[sp.ID]
			}
		}
		if smallestID < 0 {
			// Every allocation is already at the floor of 1 (more active
			// species than target slots): take the slot from the first such
			// species in order, dropping it to zero so the total still
			// reconciles exactly.
			for _, sp := range active {
				if alloc[sp.ID] > 0 {
					smallestID = sp.ID
					break
				}
			}
		}
		if smallestID < 0 {
			break
		}
		alloc[smallestID]--
	}
}

// tournamentSelect draws tournamentSize distinct members from pool without
// replacement and returns the fittest.
func tournamentSelect(pool []*Genome, rng *rand.Rand) *Genome {
	k := tournamentSize
	if k > len(pool) {
		k = len(pool)
	}
	idx := rng.Perm(len(pool))[:k]
	best := pool[idx[0]]
	for _, i := range idx[1:] {
		if pool[i].Fitness > best.Fitness {
			best = pool[i]
		}
	}
	return best
}

// Reproduce runs one full generation of the reproduction pipeline: adjusted
// fitness sharing, offspring allocation proportional to summed adjusted
// fitness, elitism, and intra-species breeding (tournament selection,
// crossover-rate gated crossover vs. cloning, then Mutate). Species are
// processed in ascending id order, and the combined offspring slice sums to
// exactly popSize (or fewer, if fewer than popSize genomes come out of
// allocation because every species was excluded — the caller surfaces that as
// an empty-population condition).
func Reproduce(species []*Species, popSize int, reg *innovation.Registry, nextID func() int, opts ReproductionOptions, rng *rand.Rand) []*Genome {
	sorted := make([]*Species, len(species))
	copy(sorted, species)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	sums := make(map[int]float64, len(sorted))
	var active []*Species
	for _, sp := range sorted {
		s := adjustedFitnessSum(sp)
		sums[sp.ID] = s
		if s > 0 {
			active = append(active, sp)
		}
	}

	alloc := allocateOffspring(active, sums, popSize)

	var offspring []*Genome
	for _, sp := range sorted {
		n, ok := alloc[sp.ID]
		if !ok || n == 0 {
			continue
		}
		offspring = append(offspring, breedSpecies(sp, n, reg, nextID, opts, rng)...)
	}
	return offspring
}

// breedSpecies produces n offspring for one species: up to elitism unmodified
// elites (carried over by fitness rank, re-evaluated next generation), then
// tournament-selected, crossed-over-or-cloned, mutated children for the rest.
func breedSpecies(sp *Species, n int, reg *innovation.Registry, nextID func() int, opts ReproductionOptions, rng *rand.Rand) []*Genome {
	ranked := make([]*Genome, len(sp.Members))
	copy(ranked, sp.Members)
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Fitness > ranked[j].Fitness })

	out := make([]*Genome, 0, n)

	elites := opts.Elitism
	if elites > n {
		elites = n
	}
	if elites > len(ranked) {
		elites = len(ranked)
	}
	for i := 0; i < elites; i++ {
		elite := ranked[i].Clone()
		elite.ID = nextID()
		elite.SpeciesID = sp.ID
		out = append(out, elite)
	}

	for len(out) < n {
		parentA := tournamentSelect(ranked, rng)
		var child *Genome
		if len(ranked) > 1 && rng.Float64() < opts.CrossoverRate {
			parentB := tournamentSelect(ranked, rng)
			child = parentA.Crossover(parentB, rng, nextID(), opts.Crossover)
		} else {
			child = parentA.Clone()
			child.ID = nextID()
		}
		child.SpeciesID = sp.ID
		// Every operator Mutate invokes clones before mutating, preserving ID.
		child = child.Mutate(reg, opts.Mutation, rng)
		out = append(out, child)
	}
	return out
}
