package genetics

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arlowren/neatcore/neat/innovation"
)

func TestGenomeWriteReadRoundTrip(t *testing.T) {
	reg := innovation.New(4)
	rng := rand.New(rand.NewSource(1))
	g := NewMinimalGenome(7, 3, 1, true, reg, rng)
	g = g.MutateAddNode(reg, rng)

	var buf bytes.Buffer
	require.NoError(t, WriteGenome(&buf, g))

	got, err := ReadGenome(&buf)
	require.NoError(t, err)

	assert.Equal(t, g.ID, got.ID)
	assert.Equal(t, g.NumInputs, got.NumInputs)
	assert.Equal(t, g.NumOutputs, got.NumOutputs)
	assert.Equal(t, g.HasBias, got.HasBias)
	require.Len(t, got.Genes, len(g.Genes))
	for i := range g.Genes {
		assert.Equal(t, g.Genes[i].Innovation, got.Genes[i].Innovation)
		assert.Equal(t, g.Genes[i].InNode, got.Genes[i].InNode)
		assert.Equal(t, g.Genes[i].OutNode, got.Genes[i].OutNode)
		assert.InDelta(t, g.Genes[i].Weight, got.Genes[i].Weight, 1e-9)
		assert.Equal(t, g.Genes[i].Enabled, got.Genes[i].Enabled)
	}
	assert.ElementsMatch(t, g.NodeIDs(), got.NodeIDs())
}

func TestReadGenomeMissingGenomeEndErrors(t *testing.T) {
	r := strings.NewReader("genomestart 1\nshape 2 1 false\n")
	_, err := ReadGenome(r)
	assert.Error(t, err)
}

func TestReadGenomeMissingShapeErrors(t *testing.T) {
	r := strings.NewReader("genomestart 1\ngenomeend 1\n")
	_, err := ReadGenome(r)
	assert.Error(t, err)
}
