package resample

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plasticc-sim/plasticc-sim/sim"
	"github.com/plasticc-sim/plasticc-sim/sim/cosmology"
)

func referenceObject(n int, redshift float64) *sim.Object {
	obs := make(sim.ObservationTable, n)
	for i := range obs {
		obs[i] = sim.Observation{
			MJD:       60000 + float64(i),
			Band:      sim.Bands[i%len(sim.Bands)],
			Flux:      100,
			FluxError: 5,
			Detected:  true,
		}
	}
	return &sim.Object{
		Metadata:     sim.Metadata{ObjectID: "ref", Redshift: redshift, HostSpecz: redshift},
		Observations: obs,
	}
}

func TestEpochSubsampler_Galactic_ScalesByBrightness(t *testing.T) {
	// GIVEN a galactic augmentation one magnitude fainter
	r := New(cosmology.PLAsTiCC.DistanceModulus)
	meta := &sim.AugmentedMetadata{Class: sim.Galactic{Brightness: 1}}

	// WHEN resampled to 10 epochs
	out, err := r.Resample(context.Background(), referenceObject(40, 0), meta, 10, rand.New(rand.NewSource(1)))

	// THEN 10 epochs are returned with flux scaled by 10^-0.4
	require.NoError(t, err)
	require.Len(t, out, 10)
	for _, o := range out {
		assert.InDelta(t, 100*math.Pow(10, -0.4), o.Flux, 1e-9)
		assert.InDelta(t, 5*math.Pow(10, -0.4), o.FluxError, 1e-9)
		assert.False(t, o.Detected, "detection flags must be reset")
	}
}

func TestEpochSubsampler_Extragalactic_DimmerAndStretched(t *testing.T) {
	r := New(cosmology.PLAsTiCC.DistanceModulus)
	meta := &sim.AugmentedMetadata{Class: sim.Extragalactic{Redshift: 0.4}}

	out, err := r.Resample(context.Background(), referenceObject(20, 0.2), meta, 20, rand.New(rand.NewSource(1)))

	require.NoError(t, err)
	require.Len(t, out, 20)
	assert.Less(t, out[0].Flux, 100.0, "higher redshift must be fainter")
	span := out[len(out)-1].MJD - out[0].MJD
	assert.InDelta(t, 19*1.4/1.2, span, 1e-9, "epoch spacing must be time-dilated")
}

func TestEpochSubsampler_MoreEpochsThanReference_UsesAll(t *testing.T) {
	r := New(cosmology.PLAsTiCC.DistanceModulus)
	meta := &sim.AugmentedMetadata{Class: sim.Galactic{}}

	out, err := r.Resample(context.Background(), referenceObject(5, 0), meta, 300, rand.New(rand.NewSource(1)))

	require.NoError(t, err)
	assert.Len(t, out, 5)
}

func TestEpochSubsampler_OutputSortedByMJD(t *testing.T) {
	r := New(cosmology.PLAsTiCC.DistanceModulus)
	meta := &sim.AugmentedMetadata{Class: sim.Galactic{}}

	out, err := r.Resample(context.Background(), referenceObject(100, 0), meta, 30, rand.New(rand.NewSource(7)))

	require.NoError(t, err)
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, out[i-1].MJD, out[i].MJD)
	}
}

func TestEpochSubsampler_Failures_WrapErrResampleFailed(t *testing.T) {
	r := New(cosmology.PLAsTiCC.DistanceModulus)

	// GIVEN a reference without observations
	_, err := r.Resample(context.Background(), referenceObject(0, 0.2),
		&sim.AugmentedMetadata{Class: sim.Galactic{}}, 10, rand.New(rand.NewSource(1)))
	require.ErrorIs(t, err, sim.ErrResampleFailed)

	// GIVEN an extragalactic reference at z=0 (infinite distance modulus change)
	_, err = r.Resample(context.Background(), referenceObject(10, 0),
		&sim.AugmentedMetadata{Class: sim.Extragalactic{Redshift: 0.3}}, 10, rand.New(rand.NewSource(1)))
	require.ErrorIs(t, err, sim.ErrResampleFailed)
}

func TestEpochSubsampler_RestFrameCoverage_DropsBandsOutsideReference(t *testing.T) {
	// GIVEN no extrapolation allowed and a redshift doubling of (1+z)
	r := New(cosmology.PLAsTiCC.DistanceModulus)
	r.MaxExtrapolation = 1
	meta := &sim.AugmentedMetadata{Class: sim.Extragalactic{Redshift: 1.4}}

	// WHEN every reference epoch is requested
	out, err := r.Resample(context.Background(), referenceObject(60, 0.2), meta, 60, rand.New(rand.NewSource(1)))

	// THEN only bands whose rest-frame wavelength stays redward of the
	// reference's bluest rest-frame wavelength survive (3671*2 = 7342 A)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	for _, o := range out {
		assert.Contains(t, []sim.Band{sim.BandI, sim.BandZ, sim.BandY}, o.Band)
	}
	assert.Len(t, out, 30)
}

func TestEpochSubsampler_RestFrameCoverage_WithinLimitKeepsAll(t *testing.T) {
	// GIVEN a redshift shift inside the extrapolation factor
	r := New(cosmology.PLAsTiCC.DistanceModulus)
	r.MaxExtrapolation = 1.5
	meta := &sim.AugmentedMetadata{Class: sim.Extragalactic{Redshift: 0.5}}

	out, err := r.Resample(context.Background(), referenceObject(60, 0.2), meta, 60, rand.New(rand.NewSource(1)))

	require.NoError(t, err)
	assert.Len(t, out, 60)
}

func TestEpochSubsampler_RestFrameCoverage_NoBandCovered_Fails(t *testing.T) {
	// GIVEN a reference observed only in u and a large redshift increase
	r := New(cosmology.PLAsTiCC.DistanceModulus)
	r.MaxExtrapolation = 1
	ref := referenceObject(6, 0.1)
	for i := range ref.Observations {
		ref.Observations[i].Band = sim.BandU
	}
	meta := &sim.AugmentedMetadata{Class: sim.Extragalactic{Redshift: 0.5}}

	_, err := r.Resample(context.Background(), ref, meta, 6, rand.New(rand.NewSource(1)))

	require.ErrorIs(t, err, sim.ErrResampleFailed)
}
