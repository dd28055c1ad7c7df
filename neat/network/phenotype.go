package network

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/arlowren/neatcore/neat/genetics"
	gmath "github.com/arlowren/neatcore/neat/math"
)

// ErrInputArityMismatch is returned by Activate when the supplied input vector's
// length does not equal the network's input count.
var ErrInputArityMismatch = errors.New("network: input vector arity mismatch")

// ErrCycleDetected is returned by Build when the genome's enabled connections
// contain a cycle and opts.OnCycle is CycleDetected (the default).
var ErrCycleDetected = errors.New("network: cycle detected among enabled connections")

// CycleResolution selects how Build reacts to a cycle among enabled genes.
type CycleResolution int

const (
	// CycleDetected fails the build with ErrCycleDetected. This is the default:
	// a feed-forward phenotype builder should not silently reinterpret a
	// structural invariant violation.
	CycleDetected CycleResolution = iota
	// CycleBreakDeterministic drops the highest-innovation enabled gene
	// participating in each reported cycle and retries, until the graph sorts
	// cleanly. Deterministic because "highest innovation" is a total order.
	CycleBreakDeterministic
)

// BuildOptions configures Build.
type BuildOptions struct {
	// Activation is applied to every Hidden and Output node's weighted input
	// sum. Defaults to the steepened sigmoid when nil.
	Activation gmath.ActivationFunction
	// OnCycle selects the cycle-handling strategy. Zero value is CycleDetected.
	OnCycle CycleResolution
}

// Network is the feed-forward phenotype built from a Genome: a fixed set of
// nodes and weighted links plus a precomputed activation order.
type Network struct {
	nodes map[int64]*NNode
	links []*Link

	inputIDs  []int64
	outputIDs []int64
	hasBias   bool
	biasID    int64

	// order lists every non-input, non-bias node id in an order where every
	// node's predecessors (through enabled links) already precede it.
	order []int64
}

// Build constructs the phenotype for g. Node roles come from g.RoleOf (id-range
// classification, never degree), links come 1:1 from g's enabled genes, and the
// activation order is computed with gonum's topo.Sort over a graph containing
// only enabled connections.
func Build(g *genetics.Genome, opts BuildOptions) (*Network, error) {
	activation := opts.Activation
	if activation == nil {
		activation = gmath.SteepenedSigmoid
	}

	n := &Network{
		nodes:     make(map[int64]*NNode, len(g.Nodes)),
		inputIDs:  toInt64s(g.InputIDs()),
		outputIDs: toInt64s(g.OutputIDs()),
		hasBias:   g.HasBias,
	}
	if g.HasBias {
		n.biasID = int64(uint32(g.NumInputs))
	}

	for _, id := range g.NodeIDs() {
		nodeActivation := activation
		if aType, ok := g.NodeActivation[id]; ok {
			nodeActivation = activatorFunc(aType)
		}
		n.nodes[int64(id)] = &NNode{
			id:       int64(id),
			role:     g.RoleOf(id),
			activate: nodeActivation,
		}
	}

	genes := make([]genetics.Gene, 0, len(g.Genes))
	for _, gene := range g.Genes {
		if gene.Enabled {
			genes = append(genes, gene)
		}
	}

	if err := n.wire(genes); err != nil {
		return nil, err
	}

	order, err := n.topoSort(genes, opts.OnCycle)
	if err != nil {
		return nil, err
	}
	n.order = order
	return n, nil
}

func (n *Network) wire(genes []genetics.Gene) error {
	n.links = n.links[:0]
	for id := range n.nodes {
		n.nodes[id].incoming = nil
		n.nodes[id].outgoing = nil
	}
	for _, gene := range genes {
		link := &Link{
			InNode:  n.nodes[int64(gene.InNode)],
			OutNode: n.nodes[int64(gene.OutNode)],
			weight:  gene.Weight,
		}
		if link.InNode == nil || link.OutNode == nil {
			return errors.Errorf("network: gene references unknown node (in=%d out=%d)", gene.InNode, gene.OutNode)
		}
		link.InNode.outgoing = append(link.InNode.outgoing, link)
		link.OutNode.incoming = append(link.OutNode.incoming, link)
		n.links = append(n.links, link)
	}
	return nil
}

// topoSort computes the activation order for n's non-input, non-bias nodes. On
// a detected cycle it either fails (CycleDetected) or, under
// CycleBreakDeterministic, drops the highest-innovation gene in each reported
// cycle and retries against a freshly rewired graph.
func (n *Network) topoSort(genes []genetics.Gene, onCycle CycleResolution) ([]int64, error) {
	for {
		sorted, err := topo.Sort(n)
		if err == nil {
			return activationOrder(sorted), nil
		}

		unorderable, ok := err.(topo.Unorderable)
		if !ok {
			return nil, errors.Wrap(err, "network: topological sort failed")
		}
		if onCycle != CycleBreakDeterministic {
			return nil, ErrCycleDetected
		}

		genes = dropHighestInnovationInCycles(genes, unorderable)
		if err := n.wire(genes); err != nil {
			return nil, err
		}
	}
}

// activationOrder filters a full topological node order down to the nodes that
// actually need evaluation during Activate: everything but Input and Bias.
func activationOrder(sorted []graph.Node) []int64 {
	order := make([]int64, 0, len(sorted))
	for _, gn := range sorted {
		node := gn.(*NNode)
		if node.role == genetics.Input || node.role == genetics.Bias {
			continue
		}
		order = append(order, node.id)
	}
	return order
}

// dropHighestInnovationInCycles removes, from genes, the single
// highest-innovation gene participating in each cycle topo.Sort reported.
func dropHighestInnovationInCycles(genes []genetics.Gene, unorderable topo.Unorderable) []genetics.Gene {
	drop := make(map[uint64]bool)
	for _, cycle := range unorderable {
		inCycle := make(map[int64]bool, len(cycle))
		for _, gn := range cycle {
			inCycle[gn.ID()] = true
		}
		var worst *genetics.Gene
		for i := range genes {
			gene := &genes[i]
			if inCycle[int64(gene.InNode)] && inCycle[int64(gene.OutNode)] {
				if worst == nil || gene.Innovation > worst.Innovation {
					worst = gene
				}
			}
		}
		if worst != nil {
			drop[worst.Innovation] = true
		}
	}

	kept := make([]genetics.Gene, 0, len(genes))
	for _, gene := range genes {
		if !drop[gene.Innovation] {
			kept = append(kept, gene)
		}
	}
	return kept
}

// Activate runs one feed-forward pass. inputs must have exactly as many
// entries as the network has ordinary inputs (bias, if present, is supplied
// internally as a constant 1.0). Returns the output node values in the
// genome's canonical output order.
func (n *Network) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(n.inputIDs) {
		return nil, ErrInputArityMismatch
	}

	for i, id := range n.inputIDs {
		n.nodes[id].value = inputs[i]
	}
	if n.hasBias {
		n.nodes[n.biasID].value = 1.0
	}

	for _, id := range n.order {
		node := n.nodes[id]
		var sum float64
		for _, link := range node.incoming {
			sum += link.InNode.value * link.weight
		}
		node.value = node.activate(sum)
	}

	out := make([]float64, len(n.outputIDs))
	for i, id := range n.outputIDs {
		out[i] = n.nodes[id].value
	}
	return out, nil
}

// activatorFunc resolves a genome-recorded per-node activation type to its
// function, grounded on the teacher's node.ActivationType field consulted at
// network build time. Falls back to the steepened sigmoid on a stale/unknown
// type rather than failing the build, since Genome.NodeActivation only ever
// records types this factory already knows how to register.
func activatorFunc(aType gmath.NodeActivationType) gmath.ActivationFunction {
	return func(input float64) float64 {
		v, err := gmath.NodeActivators.ActivateByType(input, aType)
		if err != nil {
			return gmath.SteepenedSigmoid(input)
		}
		return v
	}
}

func toInt64s(ids []uint32) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
