// Package resample provides a baseline sim.Resampler for pipelines that do
// not have a Gaussian Process flux model. It reuses the reference epochs
// instead of predicting new ones.
package resample

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/plasticc-sim/plasticc-sim/sim"
)

// EpochSubsampler draws a subset of the reference epochs and rescales them
// for the augmented object:
//   - galactic: fluxes scaled by 10^(-0.4 * brightness offset)
//   - extragalactic: fluxes scaled by the change in distance modulus
//     between the reference and new true redshift, and epoch spacing
//     stretched by the time-dilation ratio (1+z)/(1+z0)
//
// Reference flux errors are scaled with the fluxes, standing in for the
// model uncertainty a GP would report. The result is sorted by MJD.
//
// When MaxExtrapolation is positive, extragalactic epochs whose rest-frame
// wavelength at the new redshift lies outside the reference's rest-frame
// band coverage, widened by that factor, are not eligible.
type EpochSubsampler struct {
	Distmod          sim.DistanceModulusFunc
	MaxExtrapolation float64
}

// New returns an EpochSubsampler using distmod.
func New(distmod sim.DistanceModulusFunc) *EpochSubsampler {
	return &EpochSubsampler{Distmod: distmod}
}

// Resample implements sim.Resampler. When the reference has fewer epochs
// than requested, all of them are used.
func (r *EpochSubsampler) Resample(_ context.Context, ref *sim.Object, meta *sim.AugmentedMetadata, epochs int, rng *rand.Rand) (sim.ObservationTable, error) {
	if len(ref.Observations) == 0 {
		return nil, fmt.Errorf("%w: reference %s has no observations", sim.ErrResampleFailed, ref.Metadata.ObjectID)
	}

	scale, stretch, err := r.transform(ref.Metadata, meta)
	if err != nil {
		return nil, err
	}

	eligible, err := r.covered(ref, meta)
	if err != nil {
		return nil, err
	}

	n := epochs
	if n > len(eligible) {
		n = len(eligible)
	}
	if n < 0 {
		n = 0
	}
	perm := rng.Perm(len(eligible))[:n]
	picked := make([]int, n)
	for k, j := range perm {
		picked[k] = eligible[j]
	}
	sort.Ints(picked)

	t0 := ref.Observations[0].MJD
	for _, o := range ref.Observations {
		t0 = math.Min(t0, o.MJD)
	}

	out := make(sim.ObservationTable, 0, n)
	for _, i := range picked {
		o := ref.Observations[i]
		out = append(out, sim.Observation{
			MJD:       t0 + (o.MJD-t0)*stretch,
			Band:      o.Band,
			Flux:      o.Flux * scale,
			FluxError: o.FluxError * math.Abs(scale),
		})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].MJD < out[b].MJD })
	return out, nil
}

func (r *EpochSubsampler) transform(ref sim.Metadata, meta *sim.AugmentedMetadata) (scale, stretch float64, err error) {
	switch c := meta.Class.(type) {
	case sim.Galactic:
		return math.Pow(10, -0.4*c.Brightness), 1, nil
	case sim.Extragalactic:
		delta := r.Distmod(c.Redshift) - r.Distmod(ref.Redshift)
		if math.IsNaN(delta) || math.IsInf(delta, 0) {
			return 0, 0, fmt.Errorf("%w: no distance modulus change from z=%g to z=%g", sim.ErrResampleFailed, ref.Redshift, c.Redshift)
		}
		return math.Pow(10, -0.4*delta), (1 + c.Redshift) / (1 + ref.Redshift), nil
	default:
		return 0, 0, fmt.Errorf("%w: unsupported object class %T", sim.ErrResampleFailed, meta.Class)
	}
}

// covered returns the indices of reference epochs usable for meta.
func (r *EpochSubsampler) covered(ref *sim.Object, meta *sim.AugmentedMetadata) ([]int, error) {
	all := make([]int, len(ref.Observations))
	for i := range all {
		all[i] = i
	}
	c, ok := meta.Class.(sim.Extragalactic)
	if !ok || r.MaxExtrapolation <= 0 {
		return all, nil
	}

	blue, red := math.Inf(1), math.Inf(-1)
	for _, b := range sim.Bands {
		w, _ := b.CentralWavelength()
		blue, red = math.Min(blue, w), math.Max(red, w)
	}
	// Rest-frame coverage of the reference, widened by MaxExtrapolation.
	lo := blue / (1 + ref.Metadata.Redshift) / r.MaxExtrapolation
	hi := red / (1 + ref.Metadata.Redshift) * r.MaxExtrapolation

	eligible := all[:0]
	for i, o := range ref.Observations {
		w, ok := o.Band.CentralWavelength()
		if !ok {
			continue
		}
		if rest := w / (1 + c.Redshift); rest >= lo && rest <= hi {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("%w: no reference band covers the rest frame at z=%g", sim.ErrResampleFailed, c.Redshift)
	}
	return eligible, nil
}
