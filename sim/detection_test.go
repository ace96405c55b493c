package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectionSimulator_Probability(t *testing.T) {
	d := NewDetectionSimulator(DefaultSurveyConfig().Detection)
	assert.InDelta(t, 0.5, d.Probability(5.5), 1e-12)
	assert.Less(t, d.Probability(0), 0.001)
	assert.Greater(t, d.Probability(12), 0.999)
	// monotone in s2n
	prev := 0.0
	for s2n := 0.0; s2n <= 15; s2n += 0.5 {
		p := d.Probability(s2n)
		assert.GreaterOrEqual(t, p, prev)
		prev = p
	}
}

func TestSimulateDetection_BrightCurvePasses(t *testing.T) {
	// GIVEN a light curve with s2n = 50 everywhere
	d := NewDetectionSimulator(DefaultSurveyConfig().Detection)
	obs := lightCurve()
	for i := range obs {
		obs[i].Flux = 100
		obs[i].FluxError = 2
	}

	// WHEN detection is simulated
	out, pass := d.SimulateDetection(obs, &AugmentedMetadata{}, rand.New(rand.NewSource(42)))

	// THEN every epoch is detected and the object passes
	assert.True(t, pass)
	assert.Equal(t, len(obs), out.DetectedCount())
	// AND the input is untouched
	assert.Equal(t, 0, obs.DetectedCount())
}

func TestSimulateDetection_FaintCurveFails(t *testing.T) {
	d := NewDetectionSimulator(DefaultSurveyConfig().Detection)
	obs := lightCurve()
	for i := range obs {
		obs[i].Flux = 0.1
		obs[i].FluxError = 10
	}
	out, pass := d.SimulateDetection(obs, &AugmentedMetadata{}, rand.New(rand.NewSource(42)))
	assert.False(t, pass)
	assert.LessOrEqual(t, out.DetectedCount(), 1)
}

func TestSimulateDetection_FewerRowsThanMinimumNeverPass(t *testing.T) {
	d := NewDetectionSimulator(DefaultSurveyConfig().Detection)
	rng := rand.New(rand.NewSource(1))
	bright := Observation{Band: BandR, Flux: 1000, FluxError: 1}
	for _, obs := range []ObservationTable{nil, {}, {bright}} {
		_, pass := d.SimulateDetection(obs, &AugmentedMetadata{}, rng)
		assert.False(t, pass, "%d rows", len(obs))
	}
	_, pass := d.SimulateDetection(ObservationTable{bright, bright}, &AugmentedMetadata{}, rng)
	assert.True(t, pass)
}

func TestSimulateDetection_NegativeFluxUsesMagnitude(t *testing.T) {
	d := NewDetectionSimulator(DefaultSurveyConfig().Detection)
	obs := ObservationTable{
		{Band: BandR, Flux: -500, FluxError: 1},
		{Band: BandR, Flux: -500, FluxError: 1},
	}
	out, pass := d.SimulateDetection(obs, &AugmentedMetadata{}, rand.New(rand.NewSource(1)))
	assert.True(t, pass)
	assert.Equal(t, 2, out.DetectedCount())
}

func TestSimulateDetection_ZeroOverZeroIsUndetected(t *testing.T) {
	d := NewDetectionSimulator(DefaultSurveyConfig().Detection)
	obs := ObservationTable{{Band: BandR}, {Band: BandR}}
	out, pass := d.SimulateDetection(obs, &AugmentedMetadata{}, rand.New(rand.NewSource(1)))
	assert.False(t, pass)
	assert.Equal(t, 0, out.DetectedCount())
}

func TestSimulateDetection_DetectionRateNearThreshold(t *testing.T) {
	d := NewDetectionSimulator(DefaultSurveyConfig().Detection)
	obs := make(ObservationTable, 10000)
	for i := range obs {
		obs[i] = Observation{Band: BandI, Flux: 5.5, FluxError: 1}
	}
	out, _ := d.SimulateDetection(obs, &AugmentedMetadata{}, rand.New(rand.NewSource(42)))
	require.Len(t, out, len(obs))
	assert.InDelta(t, 0.5, float64(out.DetectedCount())/float64(len(obs)), 0.02)
}
