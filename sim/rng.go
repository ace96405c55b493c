package sim

import (
	"hash/fnv"
	"math/rand"
)

// === AugmentationKey ===

// AugmentationKey uniquely identifies a reproducible augmentation run.
// Two runs with the same AugmentationKey, reference data and SurveyConfig
// MUST produce bit-for-bit identical augmented objects.
type AugmentationKey int64

// NewAugmentationKey creates an AugmentationKey from a seed value.
func NewAugmentationKey(seed int64) AugmentationKey {
	return AugmentationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemMetadata draws redshifts, brightness offsets, region flags
	// and extinction smearing. Uses the master seed directly.
	SubsystemMetadata = "metadata"

	// SubsystemPhotoz draws reference rows, residual signs and error scatter.
	SubsystemPhotoz = "photoz"

	// SubsystemCadence draws target epoch counts.
	SubsystemCadence = "cadence"

	// SubsystemNoise draws per-epoch noise amplitudes and offsets.
	SubsystemNoise = "noise"

	// SubsystemDetection draws per-epoch detection flags.
	SubsystemDetection = "detection"

	// SubsystemResample is handed to the flux resampler.
	SubsystemResample = "resample"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
// Drawing more values in one subsystem (for example extra photo-z rejections)
// never shifts the sequence seen by another.
//
// Derivation formula:
//   - For SubsystemMetadata: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        AugmentationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from an AugmentationKey.
func NewPartitionedRNG(key AugmentationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	var derivedSeed int64
	if name == SubsystemMetadata {
		derivedSeed = int64(p.key)
	} else {
		derivedSeed = int64(p.key) ^ fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the AugmentationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() AugmentationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
