package math

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSteepenedSigmoidLiteral(t *testing.T) {
	// S4: activate([0.5]) with a single 0->1 gene of weight 1.0 reduces to sigma(0.5).
	got, err := NodeActivators.ActivateByType(0.5, SigmoidSteepenedActivation)
	assert.NoError(t, err)
	assert.InDelta(t, 0.9205, got, 1e-4)
}

func TestActivateByTypeUnknown(t *testing.T) {
	_, err := NodeActivators.ActivateByType(1.0, NodeActivationType(255))
	assert.Error(t, err)
}

func TestActivationTypeFromName(t *testing.T) {
	typ, err := NodeActivators.ActivationTypeFromName("SigmoidSteepenedActivation")
	assert.NoError(t, err)
	assert.Equal(t, SigmoidSteepenedActivation, typ)

	name, err := NodeActivators.ActivationNameFromType(SigmoidSteepenedActivation)
	assert.NoError(t, err)
	assert.Equal(t, "SigmoidSteepenedActivation", name)

	_, err = NodeActivators.ActivationTypeFromName("NoSuchActivation")
	assert.Error(t, err)
}

func TestSingleRouletteThrow(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	probabilities := []float64{.1, .2, .4, .15, .15}

	hist := make([]float64, len(probabilities))
	const runs = 10000
	for i := 0; i < runs; i++ {
		index := SingleRouletteThrow(rng, probabilities)
		if index < 0 || index >= len(probabilities) {
			t.Fatalf("invalid segment index %d", index)
		}
		hist[index]++
	}
	t.Log(hist)

	assert.Equal(t, -1, SingleRouletteThrow(rng, nil))
	assert.Equal(t, -1, SingleRouletteThrow(rng, []float64{0, 0}))
}

func TestRandomWeightDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var sum float64
	const n = 20000
	for i := 0; i < n; i++ {
		sum += RandomWeight(rng)
	}
	assert.InDelta(t, 0.0, sum/n, 0.1)
}
