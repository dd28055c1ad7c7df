// Package genetics implements the genome model and the variation operators —
// compatibility distance, crossover, and structural/weight mutation — that act
// on it, plus the species registry and reproduction pipeline built on top.
package genetics

// Gene is the atomic unit of heredity: a single connection between two nodes,
// historically marked with an innovation number so that crossover can align
// genes from different genomes by descent rather than by position.
type Gene struct {
	// Innovation is the globally unique historical marker for this edge.
	Innovation uint64 `yaml:"innovation"`
	// InNode and OutNode are the endpoints; InNode != OutNode always holds.
	InNode  uint32 `yaml:"in_node"`
	OutNode uint32 `yaml:"out_node"`
	// Weight is the connection's signed weight.
	Weight float64 `yaml:"weight"`
	// Enabled genes contribute to activation; disabled genes remain present so
	// that crossover can still match them against a corresponding gene in the
	// other parent.
	Enabled bool `yaml:"enabled"`
}
