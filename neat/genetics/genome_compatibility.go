package genetics

import "math"

// CompatibilityCoefficients are the c1 (excess), c2 (disjoint), c3 (weight
// difference) weights used by CompatibilityDistance. The zero value is not
// usable; use DefaultCompatibilityCoefficients.
type CompatibilityCoefficients struct {
	Excess, Disjoint, WeightDiff float64
}

// DefaultCompatibilityCoefficients returns the c1=1.0, c2=1.0, c3=0.4 defaults.
func DefaultCompatibilityCoefficients() CompatibilityCoefficients {
	return CompatibilityCoefficients{Excess: 1.0, Disjoint: 1.0, WeightDiff: 0.4}
}

// CompatibilityDistance computes the NEAT compatibility distance between g and
// other: d = c1*|E|/N + c2*|D|/N + c3*W, where E is excess genes, D is
// disjoint genes, W is the mean absolute weight difference over matching
// genes, and N = max(1, max(|g.Genes|, |other.Genes|)). This is the
// always-normalize variant (the canonical NEAT paper only normalizes when
// N > 20; this implementation follows the source's simpler, always-normalize
// rule per the governing specification).
//
// distance(A, A) == 0 for any A; distance(A, B) == distance(B, A).
func (g *Genome) CompatibilityDistance(other *Genome, c CompatibilityCoefficients) float64 {
	i, j := 0, 0
	var excess, disjoint, matching float64
	var weightDiffSum float64

	maxInnovSelf, maxInnovOther := maxInnovation(g.Genes), maxInnovation(other.Genes)

	for i < len(g.Genes) && j < len(other.Genes) {
		gi, gj := g.Genes[i], other.Genes[j]
		switch {
		case gi.Innovation == gj.Innovation:
			matching++
			weightDiffSum += math.Abs(gi.Weight - gj.Weight)
			i++
			j++
		case gi.Innovation < gj.Innovation:
			if gi.Innovation > maxInnovOther {
				excess++
			} else {
				disjoint++
			}
			i++
		default:
			if gj.Innovation > maxInnovSelf {
				excess++
			} else {
				disjoint++
			}
			j++
		}
	}
	for ; i < len(g.Genes); i++ {
		if g.Genes[i].Innovation > maxInnovOther {
			excess++
		} else {
			disjoint++
		}
	}
	for ; j < len(other.Genes); j++ {
		if other.Genes[j].Innovation > maxInnovSelf {
			excess++
		} else {
			disjoint++
		}
	}

	var meanWeightDiff float64
	if matching > 0 {
		meanWeightDiff = weightDiffSum / matching
	}

	n := float64(len(g.Genes))
	if float64(len(other.Genes)) > n {
		n = float64(len(other.Genes))
	}
	if n < 1 {
		n = 1
	}

	return c.Excess*excess/n + c.Disjoint*disjoint/n + c.WeightDiff*meanWeightDiff
}

func maxInnovation(genes []Gene) uint64 {
	var max uint64
	for _, g := range genes {
		if g.Innovation > max {
			max = g.Innovation
		}
	}
	return max
}
