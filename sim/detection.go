package sim

import (
	"math"
	"math/rand"
)

// DetectionSimulator reproduces the survey's stochastic detection pipeline.
type DetectionSimulator struct {
	cfg DetectionConfig
}

// NewDetectionSimulator creates a DetectionSimulator.
func NewDetectionSimulator(cfg DetectionConfig) *DetectionSimulator {
	return &DetectionSimulator{cfg: cfg}
}

// Probability returns the detection probability of an epoch with the given
// signal-to-noise: (erf((s2n - threshold) / width) + 1) / 2. This is an
// empirical fit to PLAsTiCC and is reproduced as is.
func (d *DetectionSimulator) Probability(s2n float64) float64 {
	return (math.Erf((s2n-d.cfg.Threshold)/d.cfg.Width) + 1) / 2
}

// SimulateDetection returns a copy of obs with Detected drawn per epoch, and
// whether the light curve has at least MinDetections detections.
// A zero flux error yields infinite signal-to-noise for nonzero flux.
func (d *DetectionSimulator) SimulateDetection(obs ObservationTable, meta *AugmentedMetadata, rng *rand.Rand) (ObservationTable, bool) {
	out := obs.Copy()
	for i := range out {
		s2n := math.Abs(out[i].Flux) / out[i].FluxError
		if math.IsNaN(s2n) {
			s2n = 0
		}
		out[i].Detected = rng.Float64() < d.Probability(s2n)
	}
	return out, out.DetectedCount() >= d.cfg.MinDetections
}
