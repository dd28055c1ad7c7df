package genetics

import (
	"math/rand"
	"sort"

	"github.com/arlowren/neatcore/neat/innovation"
	gmath "github.com/arlowren/neatcore/neat/math"
)

// NodeRole classifies a node id by the role it plays in the phenotype: Input,
// Bias, Output, or Hidden. Roles are derived from the deterministic id ranges
// recorded at genome creation, never from a node's in/out-degree — the
// teacher's degree heuristic misclassifies a hidden node that a mutation has
// turned into a pure sink or source.
type NodeRole int

const (
	Input NodeRole = iota
	Bias
	Output
	Hidden
)

func (r NodeRole) String() string {
	switch r {
	case Input:
		return "input"
	case Bias:
		return "bias"
	case Output:
		return "output"
	default:
		return "hidden"
	}
}

// Genome is the direct encoding of a network as a set of nodes plus an ordered
// list of connection genes. Order of Genes is not semantically significant
// except for crossover/compatibility tie-breaking; lookup is always by
// Innovation.
type Genome struct {
	ID int `yaml:"id"`

	Genes []Gene          `yaml:"genes"`
	Nodes map[uint32]bool `yaml:"nodes"`

	// NumInputs, HasBias and NumOutputs record the id ranges assigned at
	// construction: inputs occupy [0, NumInputs); bias, if any, is the single
	// id NumInputs; outputs occupy the NumOutputs ids immediately after.
	NumInputs  int  `yaml:"num_inputs"`
	HasBias    bool `yaml:"has_bias"`
	NumOutputs int  `yaml:"num_outputs"`

	// NodeActivation overrides the network builder's default activation
	// function for specific (usually Hidden) node ids, keyed by node id. A
	// node with no entry here uses BuildOptions.Activation. Populated by
	// MutateAddNodeWithActivation when the caller supplies a pool of node
	// activators, grounded on the teacher's opts.RandomNodeActivationType()
	// call in its mutateAddNode.
	NodeActivation map[uint32]gmath.NodeActivationType `yaml:"node_activation,omitempty"`

	Fitness         float64 `yaml:"fitness"`
	AdjustedFitness float64 `yaml:"adjusted_fitness"`

	// SpeciesID is -1 when the genome has not yet been assigned to a species.
	SpeciesID int `yaml:"species_id"`
}

// NoSpecies is the SpeciesID sentinel for "not yet assigned".
const NoSpecies = -1

// biasID returns the node id reserved for the bias, valid only when HasBias.
func (g *Genome) biasID() uint32 { return uint32(g.NumInputs) }

// firstOutputID returns the first output node id.
func (g *Genome) firstOutputID() uint32 {
	if g.HasBias {
		return uint32(g.NumInputs + 1)
	}
	return uint32(g.NumInputs)
}

// FirstHiddenID returns the smallest id available for a freshly minted hidden
// node in this genome's id space — the value an innovation.Registry governing
// this run's genomes should be initialized with.
func (g *Genome) FirstHiddenID() uint32 {
	return g.firstOutputID() + uint32(g.NumOutputs)
}

// RoleOf classifies id using the id ranges recorded at construction.
func (g *Genome) RoleOf(id uint32) NodeRole {
	if id < uint32(g.NumInputs) {
		return Input
	}
	if g.HasBias && id == g.biasID() {
		return Bias
	}
	first := g.firstOutputID()
	if id >= first && id < first+uint32(g.NumOutputs) {
		return Output
	}
	return Hidden
}

// InputIDs returns the node ids of the ordinary (non-bias) input nodes, in
// ascending order.
func (g *Genome) InputIDs() []uint32 {
	ids := make([]uint32, g.NumInputs)
	for i := range ids {
		ids[i] = uint32(i)
	}
	return ids
}

// OutputIDs returns the node ids of the output nodes, in ascending (canonical)
// order.
func (g *Genome) OutputIDs() []uint32 {
	first := g.firstOutputID()
	ids := make([]uint32, g.NumOutputs)
	for i := range ids {
		ids[i] = first + uint32(i)
	}
	return ids
}

// NewMinimalGenome builds a fully-connected bipartite graph: every input (plus
// bias, if enabled) is connected to every output, with weights drawn from
// N(0, 2.0). Node ids are assigned deterministically: inputs [0, inputs), bias
// at `inputs` if enabled, outputs immediately after.
func NewMinimalGenome(id, inputs, outputs int, bias bool, reg *innovation.Registry, rng *rand.Rand) *Genome {
	g := &Genome{
		ID:         id,
		Nodes:      make(map[uint32]bool),
		NumInputs:  inputs,
		HasBias:    bias,
		NumOutputs: outputs,
		SpeciesID:  NoSpecies,
	}

	sources := make([]uint32, 0, inputs+1)
	for i := 0; i < inputs; i++ {
		sources = append(sources, uint32(i))
	}
	if bias {
		sources = append(sources, g.biasID())
	}
	outs := g.OutputIDs()

	for _, s := range sources {
		g.Nodes[s] = true
	}
	for _, o := range outs {
		g.Nodes[o] = true
	}

	for _, s := range sources {
		for _, o := range outs {
			innov, _ := reg.InnovationFor(s, o)
			g.Genes = append(g.Genes, Gene{
				Innovation: innov,
				InNode:     s,
				OutNode:    o,
				Weight:     gmath.RandomWeight(rng),
				Enabled:    true,
			})
		}
	}
	g.sortGenes()
	return g
}

// sortGenes keeps Genes ordered by Innovation, which is how every operator in
// this package (compatibility alignment, crossover, disable-bookkeeping) walks
// the gene list.
func (g *Genome) sortGenes() {
	sort.Slice(g.Genes, func(i, j int) bool { return g.Genes[i].Innovation < g.Genes[j].Innovation })
}

// geneByInnovation returns the gene with the given innovation and whether it
// was found.
func (g *Genome) geneByInnovation(innov uint64) (*Gene, bool) {
	for i := range g.Genes {
		if g.Genes[i].Innovation == innov {
			return &g.Genes[i], true
		}
	}
	return nil, false
}

// hasEdge reports whether g already contains an (in, out) connection,
// regardless of its enabled state.
func (g *Genome) hasEdge(in, out uint32) bool {
	for _, gene := range g.Genes {
		if gene.InNode == in && gene.OutNode == out {
			return true
		}
	}
	return false
}

// Clone returns a deep, independent copy of g with the same id.
func (g *Genome) Clone() *Genome {
	c := &Genome{
		ID:              g.ID,
		Genes:           make([]Gene, len(g.Genes)),
		Nodes:           make(map[uint32]bool, len(g.Nodes)),
		NumInputs:       g.NumInputs,
		HasBias:         g.HasBias,
		NumOutputs:      g.NumOutputs,
		Fitness:         g.Fitness,
		AdjustedFitness: g.AdjustedFitness,
		SpeciesID:       g.SpeciesID,
	}
	copy(c.Genes, g.Genes)
	for n := range g.Nodes {
		c.Nodes[n] = true
	}
	if len(g.NodeActivation) > 0 {
		c.NodeActivation = make(map[uint32]gmath.NodeActivationType, len(g.NodeActivation))
		for id, t := range g.NodeActivation {
			c.NodeActivation[id] = t
		}
	}
	return c
}

// recomputeNodes rebuilds the Nodes set from the genome's gene endpoints plus
// its input/bias/output id ranges, as required after crossover or any
// structural mutation.
func (g *Genome) recomputeNodes() {
	nodes := make(map[uint32]bool, len(g.Nodes))
	for _, id := range g.InputIDs() {
		nodes[id] = true
	}
	if g.HasBias {
		nodes[g.biasID()] = true
	}
	for _, id := range g.OutputIDs() {
		nodes[id] = true
	}
	for _, gene := range g.Genes {
		nodes[gene.InNode] = true
		nodes[gene.OutNode] = true
	}
	g.Nodes = nodes
}

// NodeIDs returns every node id in the genome, sorted ascending.
func (g *Genome) NodeIDs() []uint32 {
	ids := make([]uint32, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
