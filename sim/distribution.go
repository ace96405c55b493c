package sim

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Sampler draws a single real value.
type Sampler interface {
	Sample(rng *rand.Rand) float64
}

// NormalSampler draws from N(Mean, StdDev²).
type NormalSampler struct {
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"std_dev"`
}

func (s NormalSampler) Sample(rng *rand.Rand) float64 {
	return rng.NormFloat64()*s.StdDev + s.Mean
}

// LogNormalSampler draws exp(Mu + Sigma*Z), Z ~ N(0, 1).
type LogNormalSampler struct {
	Mu    float64 `yaml:"mu"`
	Sigma float64 `yaml:"sigma"`
}

func (s LogNormalSampler) Sample(rng *rand.Rand) float64 {
	return math.Exp(s.Mu + s.Sigma*rng.NormFloat64())
}

// LogUniformSampler draws exp(U(ln Min, ln Max)).
type LogUniformSampler struct {
	logMin, logMax float64
}

// NewLogUniformSampler rejects bounds that would make the log range
// degenerate: both bounds must be finite and positive with min <= max.
func NewLogUniformSampler(min, max float64) (*LogUniformSampler, error) {
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return nil, fmt.Errorf("log-uniform bounds must be finite, got [%g, %g]", min, max)
	}
	if min <= 0 || max <= 0 {
		return nil, fmt.Errorf("log-uniform bounds must be positive, got [%g, %g]", min, max)
	}
	if min > max {
		return nil, fmt.Errorf("log-uniform lower bound %g exceeds upper bound %g", min, max)
	}
	return &LogUniformSampler{logMin: math.Log(min), logMax: math.Log(max)}, nil
}

func (s *LogUniformSampler) Sample(rng *rand.Rand) float64 {
	return math.Exp(s.logMin + rng.Float64()*(s.logMax-s.logMin))
}

// MixtureComponent is one weighted Gaussian in a GaussianMixtureSampler.
type MixtureComponent struct {
	Weight float64 `yaml:"weight"`
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"std_dev"`
}

// GaussianMixtureSampler picks a component by weight, then draws from it.
// Component selection uses inverse CDF via binary search.
type GaussianMixtureSampler struct {
	components []NormalSampler
	cdf        []float64
}

// NewGaussianMixtureSampler normalizes the weights. Components with
// non-positive weight are dropped; at least one must remain.
func NewGaussianMixtureSampler(components []MixtureComponent) (*GaussianMixtureSampler, error) {
	total := 0.0
	for _, c := range components {
		if c.Weight > 0 {
			total += c.Weight
		}
	}
	if total <= 0 {
		return nil, fmt.Errorf("gaussian mixture requires at least one positive weight")
	}

	s := &GaussianMixtureSampler{}
	cumulative := 0.0
	for _, c := range components {
		if c.Weight <= 0 {
			continue
		}
		cumulative += c.Weight / total
		s.components = append(s.components, NormalSampler{Mean: c.Mean, StdDev: c.StdDev})
		s.cdf = append(s.cdf, cumulative)
	}
	s.cdf[len(s.cdf)-1] = 1.0
	return s, nil
}

// Choose returns the index of a weighted component.
func (s *GaussianMixtureSampler) Choose(rng *rand.Rand) int {
	idx := sort.SearchFloat64s(s.cdf, rng.Float64())
	if idx >= len(s.components) {
		idx = len(s.components) - 1
	}
	return idx
}

func (s *GaussianMixtureSampler) Sample(rng *rand.Rand) float64 {
	return s.components[s.Choose(rng)].Sample(rng)
}
