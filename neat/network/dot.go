package network

import (
	"io"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding/dot"
)

// ToGraph exposes n as a plain gonum graph.Directed, for callers (inspection
// tools, tests) that want the generic graph algorithms without reaching into
// the phenotype internals.
func (n *Network) ToGraph() graph.Directed { return n }

// WriteDOT renders n's phenotype graph in Graphviz DOT, grounded on the
// teacher's network_graph_serialization.go / formats/network_graph_dot.go.
func WriteDOT(w io.Writer, n *Network, name string) error {
	data, err := dot.Marshal(n, name, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
