package genetics

import (
	"math/rand"

	gmath "github.com/arlowren/neatcore/neat/math"
)

// CrossoverOptions controls the minor behavioral choice §9 of the governing
// specification leaves open.
type CrossoverOptions struct {
	// DisableInheritedProb, when > 0, disables a child's matching gene with
	// this probability whenever either aligned parent has it disabled
	// (canonical NEAT uses 0.75). When 0 (the default here), the child always
	// copies the selected parent's enabled flag unmodified, matching the
	// teacher's behavior. See DESIGN.md for the rationale of this choice.
	DisableInheritedProb float64
}

// Crossover produces a child genome from g and other. The more-fit parent
// (ties broken by favoring g) contributes every disjoint/excess gene; matching
// genes are inherited from either parent with probability 0.5 each.
func (g *Genome) Crossover(other *Genome, rng *rand.Rand, childID int, opts CrossoverOptions) *Genome {
	hi, lo := g, other
	if other.Fitness > g.Fitness {
		hi, lo = other, g
	}

	loByInnov := make(map[uint64]Gene, len(lo.Genes))
	for _, gene := range lo.Genes {
		loByInnov[gene.Innovation] = gene
	}

	child := &Genome{
		ID:         childID,
		NumInputs:  hi.NumInputs,
		HasBias:    hi.HasBias,
		NumOutputs: hi.NumOutputs,
		SpeciesID:  NoSpecies,
	}

	for _, hiGene := range hi.Genes {
		chosen := hiGene
		if loGene, ok := loByInnov[hiGene.Innovation]; ok {
			// matching gene: inherit from either parent with probability 0.5
			if rng.Float64() < 0.5 {
				chosen = loGene
			}
			if opts.DisableInheritedProb > 0 && (!hiGene.Enabled || !loGene.Enabled) {
				chosen.Enabled = rng.Float64() >= opts.DisableInheritedProb
			}
		}
		child.Genes = append(child.Genes, chosen)
	}

	child.sortGenes()
	child.recomputeNodes()
	child.inheritNodeActivation(hi, lo)
	return child
}

// inheritNodeActivation copies each parent's per-node activation override
// (Genome.NodeActivation) onto the child for every node the child actually
// retains, so a hidden node inherited through crossover keeps the activation
// function it was spliced in with instead of silently reverting to the
// network builder's default. hi is preferred over lo on a collision, since hi
// is the more-fit parent whose genes the child favors throughout.
func (g *Genome) inheritNodeActivation(hi, lo *Genome) {
	if len(hi.NodeActivation) == 0 && len(lo.NodeActivation) == 0 {
		return
	}
	for id := range g.Nodes {
		if aType, ok := hi.NodeActivation[id]; ok {
			if g.NodeActivation == nil {
				g.NodeActivation = make(map[uint32]gmath.NodeActivationType)
			}
			g.NodeActivation[id] = aType
		} else if aType, ok := lo.NodeActivation[id]; ok {
			if g.NodeActivation == nil {
				g.NodeActivation = make(map[uint32]gmath.NodeActivationType)
			}
			g.NodeActivation[id] = aType
		}
	}
}
