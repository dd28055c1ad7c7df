// Package innovation implements the process-wide — but run-scoped — bookkeeping
// that gives NEAT its historical markings: a monotonic innovation number for
// every distinct (source, target) edge that has ever appeared in a run, and a
// monotonic id generator for newly created hidden nodes.
//
// Unlike the singleton counter server the teacher codebase derives this from,
// a Registry here is an explicitly owned value: one per run, passed to every
// operator that needs to mint an innovation or a node id. This is what makes
// concurrent, independent runs possible without hidden global coupling (see
// the REDESIGN FLAGS in the governing specification).
package innovation

import "sync"

// edge is the structural key innovations are keyed on: a directed connection
// between two node ids, irrespective of which genome or generation introduced it.
type edge struct {
	in, out uint32
}

// Registry assigns innovation numbers to structural edges and ids to new hidden
// nodes, for the lifetime of a single NEAT run. Safe for concurrent use.
type Registry struct {
	mu sync.Mutex

	byEdge         map[edge]uint64
	nextInnovation uint64
	nextNode       uint32
}

// New creates a Registry whose first innovation number is 1 and whose first
// freshly minted node id is firstHiddenID (typically one past the last
// input/bias/output id assigned at genome creation).
func New(firstHiddenID uint32) *Registry {
	r := &Registry{}
	r.reset(firstHiddenID)
	return r
}

// InnovationFor returns the innovation number for the (in, out) edge, assigning
// a fresh one the first time the edge is seen in this run. The second return
// value reports whether the edge was already known.
func (r *Registry) InnovationFor(in, out uint32) (uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.innovationForLocked(in, out)
}

func (r *Registry) innovationForLocked(in, out uint32) (uint64, bool) {
	key := edge{in: in, out: out}
	if id, ok := r.byEdge[key]; ok {
		return id, true
	}
	id := r.nextInnovation
	r.nextInnovation++
	r.byEdge[key] = id
	return id, false
}

// FreshNode allocates and returns a new hidden node id.
func (r *Registry) FreshNode() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextNode
	r.nextNode++
	return id
}

// InnovationForNode atomically allocates the two edge innovations and the node
// id needed by an add-node mutation (in->h, h->out, and h itself), so that no
// other caller can observe the registry between the three allocations.
func (r *Registry) InnovationForNode(in, out uint32) (firstInnov, secondInnov uint64, newNode uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	newNode = r.nextNode
	r.nextNode++
	firstInnov, _ = r.innovationForLocked(in, newNode)
	secondInnov, _ = r.innovationForLocked(newNode, out)
	return firstInnov, secondInnov, newNode
}

// Reset clears all recorded edges and restarts both counters, as at the start
// of a fresh run.
func (r *Registry) Reset(firstHiddenID uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset(firstHiddenID)
}

func (r *Registry) reset(firstHiddenID uint32) {
	r.byEdge = make(map[edge]uint64)
	r.nextInnovation = 1
	r.nextNode = firstHiddenID
}

// Snapshot is a serializable point-in-time copy of the registry's state, used
// for checkpointing.
type Snapshot struct {
	Edges          map[[2]uint32]uint64 `yaml:"edges"`
	NextInnovation uint64               `yaml:"next_innovation"`
	NextNode       uint32               `yaml:"next_node"`
}

// Snapshot captures the current registry state for checkpointing.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	edges := make(map[[2]uint32]uint64, len(r.byEdge))
	for k, v := range r.byEdge {
		edges[[2]uint32{k.in, k.out}] = v
	}
	return Snapshot{
		Edges:          edges,
		NextInnovation: r.nextInnovation,
		NextNode:       r.nextNode,
	}
}

// Restore replaces the registry's state with a previously captured Snapshot.
func (r *Registry) Restore(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEdge = make(map[edge]uint64, len(s.Edges))
	for k, v := range s.Edges {
		r.byEdge[edge{in: k[0], out: k[1]}] = v
	}
	r.nextInnovation = s.NextInnovation
	r.nextNode = s.NextNode
}
