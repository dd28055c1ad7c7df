package evolution

import (
	"fmt"
	"io"

	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
)

// GenerationStats is one epoch's record: the shape FillPopulationStatistics
// collected in the teacher's experiment.Generation, trimmed to this package's
// Genome/Species model.
type GenerationStats struct {
	Index          int
	Best           float64
	Avg            float64
	StdDev         float64
	PopulationSize int
	Diversity      int
}

// Statistics accumulates one GenerationStats per completed generation, plus a
// running count of evaluator failures across the whole run.
type Statistics struct {
	Generations       []GenerationStats
	EvaluatorFailures int
}

// Record appends one generation's summary, computed from its (already sorted
// descending by fitness) population and its species count.
func (s *Statistics) Record(generation int, sortedByFitnessDesc []float64, diversity int) {
	f := Floats(sortedByFitnessDesc)
	s.Generations = append(s.Generations, GenerationStats{
		Index:          generation,
		Best:           f.Max(),
		Avg:            f.Mean(),
		StdDev:         f.StdDev(),
		PopulationSize: len(sortedByFitnessDesc),
		Diversity:      diversity,
	})
}

// FitnessHistory returns the best/avg/stddev fitness series as an N-by-3
// gonum matrix, one row per recorded generation.
func (s *Statistics) FitnessHistory() *mat.Dense {
	history := mat.NewDense(len(s.Generations), 3, nil)
	for i, g := range s.Generations {
		history.SetRow(i, []float64{g.Best, g.Avg, g.StdDev})
	}
	return history
}

// ExportNPZ dumps the run's fitness history and per-generation diversity to an
// NPZ archive, grounded on the teacher's Experiment.WriteNPZ.
func (s *Statistics) ExportNPZ(w io.Writer) error {
	out := npz.NewWriter(w)
	if err := out.Write("fitness_history", s.FitnessHistory()); err != nil {
		return err
	}
	diversity := make([]float64, len(s.Generations))
	for i, g := range s.Generations {
		diversity[i] = float64(g.Diversity)
	}
	if err := out.Write("diversity", diversity); err != nil {
		return err
	}
	return out.Close()
}

// String renders a one-line human summary of a generation, for structured
// logging.
func (g GenerationStats) String() string {
	return fmt.Sprintf("gen=%d best=%.4f avg=%.4f stddev=%.4f pop=%d species=%d",
		g.Index, g.Best, g.Avg, g.StdDev, g.PopulationSize, g.Diversity)
}
