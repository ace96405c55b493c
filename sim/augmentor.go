package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/plasticc-sim/plasticc-sim/sim/trace"
)

// Resampler produces a noise-free light curve for an augmented object with
// the requested number of epochs. Implementations return an error wrapping
// ErrResampleFailed when the transform cannot be evaluated; the Augmentor
// then makes a fresh attempt.
type Resampler interface {
	Resample(ctx context.Context, ref *Object, meta *AugmentedMetadata, epochs int, rng *rand.Rand) (ObservationTable, error)
}

// Augmented is one synthetic object and the state it was generated from.
type Augmented struct {
	Object      *Object
	ReferenceID string
	Metadata    *AugmentedMetadata
	Attempts    int
}

// Augmentor runs the full pipeline: metadata, epoch count, resampling,
// noise and detection, retrying until the light curve is detectable.
type Augmentor struct {
	cfg       SurveyConfig
	metadata  *MetadataAugmentor
	cadence   *CadenceSelector
	noise     *NoiseInjector
	detection *DetectionSimulator
	resampler Resampler
	trace     *trace.AugmentationTrace
}

// NewAugmentor validates cfg and wires the pipeline. tr may be nil.
func NewAugmentor(cfg SurveyConfig, reference *PhotozReference, distmod DistanceModulusFunc, resampler Resampler, tr *trace.AugmentationTrace) (*Augmentor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid survey config: %w", err)
	}
	if reference == nil || distmod == nil || resampler == nil {
		return nil, fmt.Errorf("augmentor requires a photo-z reference, a distance modulus and a resampler")
	}
	cadence, err := NewCadenceSelector(cfg.Cadence)
	if err != nil {
		return nil, err
	}
	photoz := NewPhotozSimulator(reference, cfg.Photoz)
	return &Augmentor{
		cfg:       cfg,
		metadata:  NewMetadataAugmentor(photoz, distmod, cfg),
		cadence:   cadence,
		noise:     NewNoiseInjector(cfg.Noise),
		detection: NewDetectionSimulator(cfg.Detection),
		resampler: resampler,
		trace:     tr,
	}, nil
}

// AugmentObject makes up to MaxObjectAttempts tries at a detectable
// augmented version of ref named augmentedID.
func (a *Augmentor) AugmentObject(ctx context.Context, ref *Object, augmentedID string, rngs *PartitionedRNG) (*Augmented, error) {
	refID := ref.Metadata.ObjectID
	result, err := Retry(a.cfg.Augment.MaxObjectAttempts, func(attempt int) (*Augmented, bool, error) {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		return a.attempt(ctx, ref, augmentedID, attempt, rngs)
	})
	if errors.Is(err, ErrRetriesExhausted) {
		return nil, fmt.Errorf("%w: %s from reference %s: %w", ErrAugmentationFailed, augmentedID, refID, err)
	}
	return result, err
}

func (a *Augmentor) attempt(ctx context.Context, ref *Object, augmentedID string, attempt int, rngs *PartitionedRNG) (*Augmented, bool, error) {
	record := trace.AttemptRecord{
		ReferenceID: ref.Metadata.ObjectID,
		AugmentedID: augmentedID,
		Attempt:     attempt,
	}

	meta, err := a.metadata.Augment(ctx, ref.Metadata, rngs)
	if err != nil {
		return nil, false, err
	}
	record.Region = meta.Region.String()
	switch c := meta.Class.(type) {
	case Galactic:
		record.Class = "galactic"
		record.Brightness = c.Brightness
	case Extragalactic:
		record.Class = "extragalactic"
		record.Redshift = c.Redshift
	}

	epochs := a.cadence.ChooseEpochCount(meta, rngs.ForSubsystem(SubsystemCadence))
	record.TargetEpochs = epochs

	observations, err := a.resampler.Resample(ctx, ref, meta, epochs, rngs.ForSubsystem(SubsystemResample))
	if errors.Is(err, ErrResampleFailed) {
		logrus.Debugf("%s attempt %d: %v", augmentedID, attempt, err)
		record.Reason = "resampling failed"
		a.trace.RecordAttempt(record)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("resampling %s: %w", augmentedID, err)
	}
	record.Epochs = len(observations)

	noised, err := a.noise.InjectNoise(observations, meta, rngs.ForSubsystem(SubsystemNoise))
	if err != nil {
		return nil, false, fmt.Errorf("injecting noise into %s: %w", augmentedID, err)
	}

	detected, pass := a.detection.SimulateDetection(noised, meta, rngs.ForSubsystem(SubsystemDetection))
	record.DetectedCount = detected.DetectedCount()
	record.Passed = pass
	if !pass {
		record.Reason = "not detected"
		logrus.Debugf("%s attempt %d: %d of %d epochs detected", augmentedID, attempt, record.DetectedCount, len(detected))
	}
	a.trace.RecordAttempt(record)
	if !pass {
		return nil, false, nil
	}

	flat := meta.Flatten()
	flat.ObjectID = augmentedID
	return &Augmented{
		Object:      &Object{Metadata: flat, Observations: detected},
		ReferenceID: ref.Metadata.ObjectID,
		Metadata:    meta,
		Attempts:    attempt + 1,
	}, true, nil
}

// AugmentedObjectID names the n-th augmentation of a reference object.
func AugmentedObjectID(referenceID string, n int) string {
	return fmt.Sprintf("%s_aug_%d", referenceID, n)
}

// AugmentDataset produces perObject augmented objects for every reference.
// References that cannot be augmented (no detectable attempt, an unusable
// redshift or no physical photo-z) are logged and skipped. Configuration,
// resampler and context errors abort the run.
func (a *Augmentor) AugmentDataset(ctx context.Context, refs []*Object, perObject int, rngs *PartitionedRNG) ([]*Object, error) {
	if perObject < 1 {
		return nil, fmt.Errorf("augmented objects per reference must be >= 1, got %d", perObject)
	}
	out := make([]*Object, 0, len(refs)*perObject)
	skipped := 0
	for _, ref := range refs {
		for n := 0; n < perObject; n++ {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			id := AugmentedObjectID(ref.Metadata.ObjectID, n)
			aug, err := a.AugmentObject(ctx, ref, id, rngs)
			if errors.Is(err, ErrAugmentationFailed) || errors.Is(err, ErrInvalidRedshift) || errors.Is(err, ErrNoPhysicalPhotoz) {
				logrus.Warnf("skipping %s: %v", id, err)
				skipped++
				continue
			}
			if err != nil {
				return out, err
			}
			out = append(out, aug.Object)
		}
	}
	logrus.Infof("Augmented %d reference objects into %d objects (%d skipped)", len(refs), len(out), skipped)
	return out, nil
}
