package network

import (
	"gonum.org/v1/gonum/graph"

	"github.com/arlowren/neatcore/neat/genetics"
	gmath "github.com/arlowren/neatcore/neat/math"
)

// NNode is one phenotype neuron: an id, the role it plays (input, bias,
// output, hidden), the activation function applied to its weighted input sum,
// and the value left by the most recent Activate call.
type NNode struct {
	id       int64
	role     genetics.NodeRole
	activate gmath.ActivationFunction
	value    float64

	incoming []*Link
	outgoing []*Link
}

// ID satisfies gonum's graph.Node.
func (n *NNode) ID() int64 { return n.id }

// Role returns the node's phenotype role.
func (n *NNode) Role() genetics.NodeRole { return n.role }

// Value returns the value left by the most recent Activate call: the raw
// input for Input/Bias nodes, the activated output for Hidden/Output nodes.
func (n *NNode) Value() float64 { return n.value }

// Link is one directed, weighted connection between two phenotype nodes,
// carried over 1:1 from an enabled genetics.Gene.
type Link struct {
	InNode  *NNode
	OutNode *NNode
	weight  float64
}

// From satisfies gonum's graph.Edge.
func (l *Link) From() graph.Node { return l.InNode }

// To satisfies gonum's graph.Edge.
func (l *Link) To() graph.Node { return l.OutNode }

// ReversedEdge satisfies gonum's graph.Edge.
func (l *Link) ReversedEdge() graph.Edge {
	return &Link{InNode: l.OutNode, OutNode: l.InNode, weight: l.weight}
}

// Weight satisfies gonum's graph.WeightedEdge.
func (l *Link) Weight() float64 { return l.weight }
