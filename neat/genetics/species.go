package genetics

import (
	"math"
	"math/rand"
	"sort"
)

// Species is a group of genomes considered compatible with a persistent
// representative. Species are persistent across generations: a stable id, a
// representative carried over from the previous generation, and the current
// generation's membership.
type Species struct {
	ID      int
	Members []*Genome

	// Age and AgeOfLastImprovement back the optional stagnation-culling
	// extension (see Registry.EnableStagnationCulling); they play no role in
	// the default speciation behavior.
	Age                  int
	AgeOfLastImprovement int
	MaxFitnessEver       float64
}

// BestFitness returns the maximum Fitness among the species' current members,
// or -Inf if the species has no members.
func (s *Species) BestFitness() float64 {
	best := negInf
	for _, m := range s.Members {
		if m.Fitness > best {
			best = m.Fitness
		}
	}
	return best
}

var negInf = math.Inf(-1)

// Registry partitions a population into species by compatibility distance
// around persistent representatives, carrying representatives and age
// bookkeeping from one generation to the next.
type Registry struct {
	Threshold float64
	Coeffs    CompatibilityCoefficients

	// EnableStagnationCulling, when true, excludes a species from offspring
	// allocation once it has gone DropOffAge generations without improving its
	// best-ever fitness. This is the opt-in form of the stagnation-culling
	// extension the governing specification leaves as an open question;
	// default false keeps behavior identical to the spec's core algorithm.
	EnableStagnationCulling bool
	DropOffAge              int

	representatives map[int]*Genome
	lastID          int
	age             map[int]int
	ageOfImprove    map[int]int
	bestEver        map[int]float64
}

// NewRegistry creates a species Registry with no species yet known.
func NewRegistry(threshold float64, coeffs CompatibilityCoefficients) *Registry {
	return &Registry{
		Threshold:       threshold,
		Coeffs:          coeffs,
		representatives: make(map[int]*Genome),
		age:             make(map[int]int),
		ageOfImprove:    make(map[int]int),
		bestEver:        make(map[int]float64),
	}
}

// Speciate assigns every genome in pop to a species, in population order,
// using first-match against representatives in ascending species-id order —
// never nearest — so that runs are reproducible under a fixed seed. A genome
// matching no existing representative founds a new species with the next
// monotonically increasing id. After assignment, each species' representative
// for the next call is re-picked uniformly at random from its new membership.
func (r *Registry) Speciate(pop []*Genome, rng *rand.Rand) []*Species {
	bySpecies := make(map[int][]*Genome)

	repIDs := make([]int, 0, len(r.representatives))
	for id := range r.representatives {
		repIDs = append(repIDs, id)
	}
	sort.Ints(repIDs)

	for _, g := range pop {
		assigned := -1
		for _, id := range repIDs {
			rep := r.representatives[id]
			if g.CompatibilityDistance(rep, r.Coeffs) < r.Threshold {
				assigned = id
				break
			}
		}
		if assigned < 0 {
			r.lastID++
			assigned = r.lastID
			repIDs = append(repIDs, assigned)
			sort.Ints(repIDs)
			r.representatives[assigned] = g
		}
		g.SpeciesID = assigned
		bySpecies[assigned] = append(bySpecies[assigned], g)
	}

	ids := make([]int, 0, len(bySpecies))
	for id := range bySpecies {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	species := make([]*Species, 0, len(ids))
	for _, id := range ids {
		members := bySpecies[id]
		r.representatives[id] = members[rng.Intn(len(members))]

		best := r.bestEver[id]
		var curBest float64 = negInf
		for _, m := range members {
			if m.Fitness > curBest {
				curBest = m.Fitness
			}
		}
		r.age[id]++
		if curBest > best {
			r.bestEver[id] = curBest
			r.ageOfImprove[id] = r.age[id]
		}

		species = append(species, &Species{
			ID:                   id,
			Members:              members,
			Age:                  r.age[id],
			AgeOfLastImprovement: r.ageOfImprove[id],
			MaxFitnessEver:       r.bestEver[id],
		})
	}

	// Species with no surviving members this generation are implicitly
	// dropped: their representative and age state are forgotten so their id
	// is never reused and a future match against them can't occur.
	for id := range r.representatives {
		if _, ok := bySpecies[id]; !ok {
			delete(r.representatives, id)
			delete(r.age, id)
			delete(r.ageOfImprove, id)
			delete(r.bestEver, id)
		}
	}

	return species
}

// IsStagnant reports whether sp should be excluded from offspring allocation
// under the opt-in stagnation-culling extension.
func (r *Registry) IsStagnant(sp *Species) bool {
	return r.EnableStagnationCulling && sp.Age-sp.AgeOfLastImprovement > r.DropOffAge
}
