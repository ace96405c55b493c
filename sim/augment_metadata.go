package sim

import (
	"context"
	"fmt"
	"math"
)

// DistanceModulusFunc maps a redshift to a distance modulus in magnitudes.
type DistanceModulusFunc func(z float64) float64

// MetadataAugmentor draws new metadata for a synthetic object.
type MetadataAugmentor struct {
	photoz  *PhotozSimulator
	distmod DistanceModulusFunc
	cfg     SurveyConfig
}

// NewMetadataAugmentor creates a MetadataAugmentor. distmod is evaluated at
// the simulated photo-z, as a downstream classifier would.
func NewMetadataAugmentor(photoz *PhotozSimulator, distmod DistanceModulusFunc, cfg SurveyConfig) *MetadataAugmentor {
	return &MetadataAugmentor{photoz: photoz, distmod: distmod, cfg: cfg}
}

// RedshiftBounds returns the range a new redshift is drawn from for a
// template at z0. The upper bound is capped so the template is never
// evaluated at rest-frame wavelengths the flux model cannot extrapolate to.
func RedshiftBounds(z0 float64, cfg RedshiftConfig) (minZ, maxZ float64, err error) {
	if math.IsNaN(z0) || math.IsInf(z0, 0) || z0 <= 0 {
		return 0, 0, fmt.Errorf("%w: extragalactic template redshift must be a finite positive number, got %g", ErrInvalidRedshift, z0)
	}
	minZ = cfg.MinFactor * z0
	maxZ = math.Min(cfg.MaxFactor*z0, cfg.ExtrapolationLimit*(1+z0)-1)
	if maxZ < minZ {
		return 0, 0, fmt.Errorf("%w: redshift range [%g, %g] for z0=%g is empty", ErrInvalidRedshift, minZ, maxZ, z0)
	}
	return minZ, maxZ, nil
}

// Augment copies ref and draws the object class, survey region and
// extinction of a new synthetic object. Sky position is left untouched.
func (a *MetadataAugmentor) Augment(ctx context.Context, ref Metadata, rngs *PartitionedRNG) (*AugmentedMetadata, error) {
	rng := rngs.ForSubsystem(SubsystemMetadata)
	aug := &AugmentedMetadata{Reference: ref.Clone()}

	if ref.Galactic {
		aug.Class = Galactic{Brightness: a.cfg.Galactic.Brightness.Sample(rng)}
	} else {
		class, err := a.augmentRedshift(ctx, ref.Redshift, rngs)
		if err != nil {
			return nil, fmt.Errorf("object %s: %w", ref.ObjectID, err)
		}
		aug.Class = class
	}

	// Deep and wide field samples are effectively disjoint, so the keep
	// probability is a free choice. A wide-field template cannot produce a
	// deep-field light curve.
	switch RegionOf(ref.DDF) {
	case DeepField:
		if rng.Float64() < a.cfg.Region.DDFKeepProbability {
			aug.Region = DeepField
		} else {
			aug.Region = WideField
		}
	case WideField:
		aug.Region = WideField
	}

	aug.MWEBV = ref.MWEBV * (1 + a.cfg.Extinction.Scatter*rng.NormFloat64())
	return aug, nil
}

func (a *MetadataAugmentor) augmentRedshift(ctx context.Context, z0 float64, rngs *PartitionedRNG) (Extragalactic, error) {
	minZ, maxZ, err := RedshiftBounds(z0, a.cfg.Redshift)
	if err != nil {
		return Extragalactic{}, err
	}
	sampler, err := NewLogUniformSampler(minZ, maxZ)
	if err != nil {
		return Extragalactic{}, fmt.Errorf("%w: %w", ErrInvalidRedshift, err)
	}
	newZ := sampler.Sample(rngs.ForSubsystem(SubsystemMetadata))
	// Rounding in exp(log(x)) can step just outside the closed range.
	newZ = math.Min(math.Max(newZ, minZ), maxZ)

	photoz, photozError, err := a.photoz.Simulate(ctx, newZ, rngs.ForSubsystem(SubsystemPhotoz))
	if err != nil {
		return Extragalactic{}, err
	}
	return Extragalactic{
		Redshift:    newZ,
		Photoz:      photoz,
		PhotozError: photozError,
		Distmod:     a.distmod(photoz),
	}, nil
}
