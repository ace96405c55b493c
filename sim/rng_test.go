package sim

import (
	"math"
	"math/rand"
	"testing"
)

// === AugmentationKey Tests ===

func TestAugmentationKey_Creation(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"positive seed", 42},
		{"zero seed", 0},
		{"negative seed", -1},
		{"max int64", math.MaxInt64},
		{"min int64", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewAugmentationKey(tt.seed)
			if int64(key) != tt.seed {
				t.Errorf("NewAugmentationKey(%d) = %d, want %d", tt.seed, key, tt.seed)
			}
		})
	}
}

// === PartitionedRNG Tests ===

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// BDD: Same key+name produces same sequence
	rng1 := NewPartitionedRNG(NewAugmentationKey(42))
	rng2 := NewPartitionedRNG(NewAugmentationKey(42))

	for i := 0; i < 3; i++ {
		v1 := rng1.ForSubsystem(SubsystemNoise).Float64()
		v2 := rng2.ForSubsystem(SubsystemNoise).Float64()
		if v1 != v2 {
			t.Errorf("Value %d: got %v and %v, want identical", i, v1, v2)
		}
	}
}

func TestPartitionedRNG_SubsystemIsolation(t *testing.T) {
	// BDD: extra photo-z rejections do not shift the detection stream
	rngA := NewPartitionedRNG(NewAugmentationKey(42))

	for i := 0; i < 10; i++ {
		rngA.ForSubsystem(SubsystemPhotoz).Float64()
	}
	aDetectionFirst := rngA.ForSubsystem(SubsystemDetection).Float64()

	fresh := NewPartitionedRNG(NewAugmentationKey(42))
	expectedFirst := fresh.ForSubsystem(SubsystemDetection).Float64()

	if aDetectionFirst != expectedFirst {
		t.Errorf("A's detection first value = %v, want %v (isolation broken)", aDetectionFirst, expectedFirst)
	}
}

func TestPartitionedRNG_MetadataUsesMasterSeed(t *testing.T) {
	seed := int64(42)
	rng := NewPartitionedRNG(NewAugmentationKey(seed))
	metadataRNG := rng.ForSubsystem(SubsystemMetadata)
	directRNG := newRandFromSeed(seed)

	for i := 0; i < 10; i++ {
		got := metadataRNG.Float64()
		want := directRNG.Float64()
		if got != want {
			t.Errorf("Value %d: metadata RNG = %v, direct RNG = %v", i, got, want)
		}
	}
}

func TestPartitionedRNG_CachesInstance(t *testing.T) {
	rng := NewPartitionedRNG(NewAugmentationKey(42))

	if rng.ForSubsystem(SubsystemCadence) != rng.ForSubsystem(SubsystemCadence) {
		t.Error("ForSubsystem returned different instances for same name")
	}
}

func TestPartitionedRNG_Key(t *testing.T) {
	seed := int64(12345)
	rng := NewPartitionedRNG(NewAugmentationKey(seed))

	if rng.Key() != AugmentationKey(seed) {
		t.Errorf("Key() = %v, want %v", rng.Key(), seed)
	}
}

func TestPartitionedRNG_LazyInitialization(t *testing.T) {
	rng := NewPartitionedRNG(NewAugmentationKey(42))

	if len(rng.subsystems) != 0 {
		t.Errorf("New PartitionedRNG has %d subsystems, want 0", len(rng.subsystems))
	}

	rng.ForSubsystem(SubsystemMetadata)

	if len(rng.subsystems) != 1 {
		t.Errorf("After one ForSubsystem call, have %d subsystems, want 1", len(rng.subsystems))
	}
}

func TestFnv1a64_NoCollisionAcrossSubsystems(t *testing.T) {
	names := []string{
		SubsystemMetadata,
		SubsystemPhotoz,
		SubsystemCadence,
		SubsystemNoise,
		SubsystemDetection,
		SubsystemResample,
		"",
	}

	hashes := make(map[int64]string)
	for _, name := range names {
		h := fnv1a64(name)
		if existing, ok := hashes[h]; ok {
			t.Errorf("Hash collision: %q and %q both hash to %d", name, existing, h)
		}
		hashes[h] = name
	}
}

func BenchmarkPartitionedRNG_ForSubsystem_CacheHit(b *testing.B) {
	rng := NewPartitionedRNG(NewAugmentationKey(42))
	rng.ForSubsystem(SubsystemNoise)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rng.ForSubsystem(SubsystemNoise)
	}
}

// newRandFromSeed creates a *rand.Rand with the given seed.
func newRandFromSeed(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
