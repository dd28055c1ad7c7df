package genetics

import (
	"math/rand"

	"github.com/arlowren/neatcore/neat/innovation"
	gmath "github.com/arlowren/neatcore/neat/math"
)

// MutationRates groups the probabilities the Mutate orchestrator applies, and
// the perturbation shape used by MutateWeights.
type MutationRates struct {
	AddNode           float64
	AddConnection     float64
	WeightMutation    float64
	ToggleConnection  float64
	PerturbationRate  float64
	PerturbationPower float64

	// Activators and ActivatorProbs, when non-empty, make add-node mutations
	// draw the new hidden node's activation function from this pool via a
	// roulette throw (gmath.SingleRouletteThrow) instead of leaving it to the
	// network builder's default. Populated from Options.NodeActivators /
	// Options.NodeActivatorsProb.
	Activators     []gmath.NodeActivationType
	ActivatorProbs []float64
}

// Every variation operator in this file is total: if its precondition can't be
// met (empty gene set, no valid connection candidate, ...) it returns the
// genome unchanged rather than erroring.

// MutateAddNode picks a uniformly random enabled gene, disables it, and splices
// in a new hidden node on a two-edge path that reproduces the old single
// edge's effect at introduction: in->h weighted 1.0, h->out weighted the old
// gene's weight.
func (g *Genome) MutateAddNode(reg *innovation.Registry, rng *rand.Rand) *Genome {
	enabled := make([]int, 0, len(g.Genes))
	for i, gene := range g.Genes {
		if gene.Enabled {
			enabled = append(enabled, i)
		}
	}
	if len(enabled) == 0 {
		return g
	}

	idx := enabled[rng.Intn(len(enabled))]
	child := g.Clone()
	old := &child.Genes[idx]
	old.Enabled = false

	firstInnov, secondInnov, hidden := reg.InnovationForNode(old.InNode, old.OutNode)
	child.Genes = append(child.Genes,
		Gene{Innovation: firstInnov, InNode: old.InNode, OutNode: hidden, Weight: 1.0, Enabled: true},
		Gene{Innovation: secondInnov, InNode: hidden, OutNode: old.OutNode, Weight: old.Weight, Enabled: true},
	)
	child.sortGenes()
	child.recomputeNodes()
	return child
}

// MutateAddNodeWithActivation behaves like MutateAddNode but additionally
// assigns the newly spliced hidden node a random activation function drawn
// from activators/probs via a roulette throw, grounded on the teacher's
// opts.RandomNodeActivationType() call in its mutateAddNode. With an empty
// activators pool it is equivalent to MutateAddNode: the new node falls back
// to the network builder's default activation.
func (g *Genome) MutateAddNodeWithActivation(reg *innovation.Registry, rng *rand.Rand, activators []gmath.NodeActivationType, probs []float64) *Genome {
	child := g.MutateAddNode(reg, rng)
	if child == g || len(activators) == 0 {
		return child
	}
	newNode, ok := soleNewNode(g, child)
	if !ok {
		return child
	}
	idx := gmath.SingleRouletteThrow(rng, probs)
	if idx < 0 {
		return child
	}
	if child.NodeActivation == nil {
		child.NodeActivation = make(map[uint32]gmath.NodeActivationType, 1)
	}
	child.NodeActivation[newNode] = activators[idx]
	return child
}

// soleNewNode returns the one node id present in after but not in before,
// i.e. the hidden node MutateAddNode just spliced in.
func soleNewNode(before, after *Genome) (uint32, bool) {
	for id := range after.Nodes {
		if !before.Nodes[id] {
			return id, true
		}
	}
	return 0, false
}

// MutateAddConnection samples a structurally novel (s, t) pair, s != t, not
// already present as an edge and not closing a cycle, and adds it with a
// freshly drawn weight. Candidate pairs are tried in role-preference order —
// hidden->output, input->hidden, input->output, hidden->hidden — consuming the
// first non-empty bucket, matching the source's sampling bias.
func (g *Genome) MutateAddConnection(reg *innovation.Registry, rng *rand.Rand) *Genome {
	inputs := g.InputIDs()
	if g.HasBias {
		inputs = append(inputs, g.biasID())
	}
	outputs := g.OutputIDs()
	hidden := g.hiddenIDs()

	buckets := [][2][]uint32{
		{hidden, outputs},
		{inputs, hidden},
		{inputs, outputs},
		{hidden, hidden},
	}

	for _, b := range buckets {
		candidates := g.candidatePairs(b[0], b[1])
		if len(candidates) == 0 {
			continue
		}
		pick := candidates[rng.Intn(len(candidates))]
		child := g.Clone()
		innov, _ := reg.InnovationFor(pick[0], pick[1])
		child.Genes = append(child.Genes, Gene{
			Innovation: innov,
			InNode:     pick[0],
			OutNode:    pick[1],
			Weight:     gmath.RandomWeight(rng),
			Enabled:    true,
		})
		child.sortGenes()
		child.recomputeNodes()
		return child
	}
	return g
}

// hiddenIDs returns the node ids classified as Hidden, sorted ascending.
func (g *Genome) hiddenIDs() []uint32 {
	var ids []uint32
	for _, id := range g.NodeIDs() {
		if g.RoleOf(id) == Hidden {
			ids = append(ids, id)
		}
	}
	return ids
}

// candidatePairs returns every (s, t) with s in froms, t in tos, s != t, no
// existing edge (in either enabled state), and not closing a cycle through the
// genome's currently enabled genes.
func (g *Genome) candidatePairs(froms, tos []uint32) [][2]uint32 {
	var out [][2]uint32
	for _, s := range froms {
		for _, t := range tos {
			if s == t || g.hasEdge(s, t) {
				continue
			}
			if g.wouldCreateCycle(s, t) {
				continue
			}
			out = append(out, [2]uint32{s, t})
		}
	}
	return out
}

// wouldCreateCycle reports whether adding edge s->t would close a cycle given
// the genome's currently enabled connections, i.e. whether t can already reach
// s.
func (g *Genome) wouldCreateCycle(s, t uint32) bool {
	if s == t {
		return true
	}
	visited := map[uint32]bool{t: true}
	stack := []uint32{t}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == s {
			return true
		}
		for _, gene := range g.Genes {
			if !gene.Enabled || gene.InNode != n {
				continue
			}
			if !visited[gene.OutNode] {
				visited[gene.OutNode] = true
				stack = append(stack, gene.OutNode)
			}
		}
	}
	return false
}

// MutateWeights perturbs every gene's weight: with probability rates.PerturbationRate
// the weight is nudged by N(0,1)*PerturbationPower; otherwise it is replaced
// outright by a fresh N(0,2.0) draw.
func (g *Genome) MutateWeights(rates MutationRates, rng *rand.Rand) *Genome {
	if len(g.Genes) == 0 {
		return g
	}
	child := g.Clone()
	for i := range child.Genes {
		if rng.Float64() < rates.PerturbationRate {
			child.Genes[i].Weight += rng.NormFloat64() * rates.PerturbationPower
		} else {
			child.Genes[i].Weight = gmath.RandomWeight(rng)
		}
	}
	return child
}

// MutateToggleEnable flips the enabled bit of one uniformly random gene.
func (g *Genome) MutateToggleEnable(rng *rand.Rand) *Genome {
	if len(g.Genes) == 0 {
		return g
	}
	child := g.Clone()
	idx := rng.Intn(len(child.Genes))
	child.Genes[idx].Enabled = !child.Genes[idx].Enabled
	return child
}

// MutateConnectSensors picks one input (or the bias) at random among those left
// without an outgoing edge and connects it to every output it isn't yet wired
// to. A supplemental operator (the minimal
// construction used by NewMinimalGenome is always fully connected, so this is
// a no-op there); it exists for callers who construct sparser seed genomes
// directly and opt into progressively wiring up inputs, as the teacher's
// mutateConnectSensors does for its randomly-connected seed genomes.
func (g *Genome) MutateConnectSensors(reg *innovation.Registry, rng *rand.Rand) *Genome {
	inputs := g.InputIDs()
	if g.HasBias {
		inputs = append(inputs, g.biasID())
	}
	var disconnected []uint32
	for _, s := range inputs {
		connected := false
		for _, gene := range g.Genes {
			if gene.InNode == s {
				connected = true
				break
			}
		}
		if !connected {
			disconnected = append(disconnected, s)
		}
	}
	if len(disconnected) == 0 {
		return g
	}
	sensor := disconnected[rng.Intn(len(disconnected))]
	child := g.Clone()
	added := false
	for _, t := range g.OutputIDs() {
		if child.hasEdge(sensor, t) {
			continue
		}
		innov, _ := reg.InnovationFor(sensor, t)
		child.Genes = append(child.Genes, Gene{
			Innovation: innov,
			InNode:     sensor,
			OutNode:    t,
			Weight:     gmath.RandomWeight(rng),
			Enabled:    true,
		})
		added = true
	}
	if !added {
		return g
	}
	child.sortGenes()
	child.recomputeNodes()
	return child
}

// Mutate applies every structural/weight operator independently with its
// configured probability, in the fixed order the governing specification
// mandates for reproducibility under a seeded RNG: add-node, add-connection,
// weight-mutation, toggle.
func (g *Genome) Mutate(reg *innovation.Registry, rates MutationRates, rng *rand.Rand) *Genome {
	child := g
	if rng.Float64() < rates.AddNode {
		child = child.MutateAddNodeWithActivation(reg, rng, rates.Activators, rates.ActivatorProbs)
	}
	if rng.Float64() < rates.AddConnection {
		child = child.MutateAddConnection(reg, rng)
	}
	if rng.Float64() < rates.WeightMutation {
		child = child.MutateWeights(rates, rng)
	}
	if rng.Float64() < rates.ToggleConnection {
		child = child.MutateToggleEnable(rng)
	}
	return child
}
