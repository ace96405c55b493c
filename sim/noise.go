package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// NoiseInjector adds survey measurement noise to a resampled light curve.
type NoiseInjector struct {
	models NoiseConfig
}

// NewNoiseInjector creates a NoiseInjector with one band model per region.
func NewNoiseInjector(models NoiseConfig) *NoiseInjector {
	return &NoiseInjector{models: models}
}

// InjectNoise returns a noised copy of obs; obs itself is not modified.
// For each row an amplitude is drawn from the band's lognormal, the flux is
// offset by N(0, amplitude) and the amplitude is added to the flux error in
// quadrature. An empty table is returned as is.
func (n *NoiseInjector) InjectNoise(obs ObservationTable, meta *AugmentedMetadata, rng *rand.Rand) (ObservationTable, error) {
	out := obs.Copy()
	if len(out) == 0 {
		return out, nil
	}

	model := n.models.ForRegion(meta.Region)
	for i := range out {
		params, ok := model[out[i].Band]
		if !ok {
			return nil, fmt.Errorf("%w %q in %s noise model", ErrUnknownBand, out[i].Band, meta.Region)
		}
		amplitude := params.Sample(rng)
		out[i].Flux += amplitude * rng.NormFloat64()
		out[i].FluxError = math.Hypot(out[i].FluxError, amplitude)
	}
	return out, nil
}
