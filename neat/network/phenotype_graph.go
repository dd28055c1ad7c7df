package network

import "gonum.org/v1/gonum/graph"

// Network satisfies gonum's graph.Directed, grounded on the teacher's
// network_graph.go, so topo.Sort and the DOT encoder can operate on it
// directly without an intermediate copy.

// Node returns the node with the given id, or nil if none exists.
func (n *Network) Node(id int64) graph.Node {
	if node, ok := n.nodes[id]; ok {
		return node
	}
	return nil
}

// Nodes returns every node in the network.
func (n *Network) Nodes() graph.Nodes {
	nodes := make([]graph.Node, 0, len(n.nodes))
	for _, node := range n.nodes {
		nodes = append(nodes, node)
	}
	return &nodeIterator{nodes: nodes, index: -1}
}

// From returns the nodes directly reachable from id.
func (n *Network) From(id int64) graph.Nodes {
	node, ok := n.nodes[id]
	if !ok {
		return graph.Empty
	}
	nodes := make([]graph.Node, 0, len(node.outgoing))
	for _, l := range node.outgoing {
		nodes = append(nodes, l.OutNode)
	}
	return &nodeIterator{nodes: nodes, index: -1}
}

// HasEdgeBetween reports whether an edge exists between xid and yid, in either
// direction.
func (n *Network) HasEdgeBetween(xid, yid int64) bool {
	return n.edgeBetween(xid, yid, false) != nil
}

// Edge returns the edge from uid to vid, or nil if none exists.
func (n *Network) Edge(uid, vid int64) graph.Edge {
	return n.edgeBetween(uid, vid, true)
}

// HasEdgeFromTo reports whether a directed edge exists from uid to vid.
func (n *Network) HasEdgeFromTo(uid, vid int64) bool {
	return n.edgeBetween(uid, vid, true) != nil
}

// To returns the nodes that connect directly to id.
func (n *Network) To(id int64) graph.Nodes {
	node, ok := n.nodes[id]
	if !ok {
		return graph.Empty
	}
	nodes := make([]graph.Node, 0, len(node.incoming))
	for _, l := range node.incoming {
		nodes = append(nodes, l.InNode)
	}
	return &nodeIterator{nodes: nodes, index: -1}
}

func (n *Network) edgeBetween(uid, vid int64, directed bool) *Link {
	for _, l := range n.links {
		if l.InNode.id == uid && l.OutNode.id == vid {
			return l
		}
		if !directed && l.InNode.id == vid && l.OutNode.id == uid {
			return l
		}
	}
	return nil
}

// nodeIterator is a minimal graph.Nodes over a materialized node slice.
type nodeIterator struct {
	nodes []graph.Node
	index int
}

func (it *nodeIterator) Next() bool {
	if it.index+1 < len(it.nodes) {
		it.index++
		return true
	}
	return false
}

func (it *nodeIterator) Len() int {
	return len(it.nodes) - it.index - 1
}

func (it *nodeIterator) Node() graph.Node {
	if it.index < 0 || it.index >= len(it.nodes) {
		return nil
	}
	return it.nodes[it.index]
}

func (it *nodeIterator) Reset() {
	it.index = -1
}
