package genetics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arlowren/neatcore/neat/innovation"
	gmath "github.com/arlowren/neatcore/neat/math"
)

func TestCrossoverInheritsExcessFromFitterParent(t *testing.T) {
	a := &Genome{
		ID: 1, Fitness: 10, NumInputs: 2, NumOutputs: 1, SpeciesID: 0,
		Genes: []Gene{
			{Innovation: 1, InNode: 0, OutNode: 2, Weight: 1.0, Enabled: true},
			{Innovation: 2, InNode: 1, OutNode: 2, Weight: 1.0, Enabled: true},
			{Innovation: 3, InNode: 0, OutNode: 2, Weight: 5.0, Enabled: true}, // excess
		},
	}
	b := &Genome{
		ID: 2, Fitness: 1, NumInputs: 2, NumOutputs: 1, SpeciesID: 0,
		Genes: []Gene{
			{Innovation: 1, InNode: 0, OutNode: 2, Weight: -1.0, Enabled: true},
			{Innovation: 2, InNode: 1, OutNode: 2, Weight: -1.0, Enabled: true},
		},
	}

	rng := rand.New(rand.NewSource(1))
	child := a.Crossover(b, rng, 3, CrossoverOptions{})

	byInnov := make(map[uint64]Gene)
	for _, g := range child.Genes {
		byInnov[g.Innovation] = g
	}
	if _, ok := byInnov[3]; !ok {
		t.Fatal("child should inherit excess gene from fitter parent")
	}
	for _, gene := range child.Genes {
		assert.True(t, child.Nodes[gene.InNode])
		assert.True(t, child.Nodes[gene.OutNode])
	}
}

func TestCrossoverInheritsNodeActivationOverride(t *testing.T) {
	a := &Genome{
		ID: 1, Fitness: 10, NumInputs: 2, NumOutputs: 1, SpeciesID: 0,
		Genes: []Gene{
			{Innovation: 1, InNode: 0, OutNode: 3, Weight: 1.0, Enabled: true},
			{Innovation: 2, InNode: 3, OutNode: 2, Weight: 1.0, Enabled: true},
		},
		NodeActivation: map[uint32]gmath.NodeActivationType{3: gmath.TanhActivation},
	}
	b := &Genome{
		ID: 2, Fitness: 1, NumInputs: 2, NumOutputs: 1, SpeciesID: 0,
		Genes: []Gene{
			{Innovation: 3, InNode: 1, OutNode: 2, Weight: -1.0, Enabled: true},
		},
	}

	rng := rand.New(rand.NewSource(1))
	child := a.Crossover(b, rng, 3, CrossoverOptions{})

	assert.True(t, child.Nodes[3], "child should retain hidden node 3 inherited from the fitter parent")
	assert.Equal(t, gmath.TanhActivation, child.NodeActivation[3])
}

func TestCrossoverNoDuplicateInnovations(t *testing.T) {
	reg := innovation.New(10)
	rng := rand.New(rand.NewSource(2))
	a := NewMinimalGenome(1, 3, 1, true, reg, rng)
	a.Fitness = 5
	b := NewMinimalGenome(2, 3, 1, true, reg, rng)
	b.Fitness = 3

	child := a.Crossover(b, rng, 3, CrossoverOptions{})
	seen := make(map[uint64]bool)
	for _, g := range child.Genes {
		if seen[g.Innovation] {
			t.Fatalf("duplicate innovation %d in child", g.Innovation)
		}
		seen[g.Innovation] = true
	}
}
