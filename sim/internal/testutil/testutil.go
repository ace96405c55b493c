// Package testutil provides shared test infrastructure: access to the
// PLAsTiCC fixtures under testdata/ and tolerance-bounded statistical
// assertions for sampler tests.
package testutil

import (
	"math"
	"path/filepath"
	"runtime"
	"testing"

	"gonum.org/v1/gonum/stat"
)

// Fixture dataset names under testdata/.
const (
	// PhotozReferenceDataset has mixed galactic, extragalactic and
	// spec-z-less objects; 28 rows have a positive spec-z.
	PhotozReferenceDataset = "plasticc_test"
	// TrainingDataset has three objects with light curves: 615 (galactic,
	// ddf), 730 (extragalactic, ddf) and 1598 (extragalactic, wfd).
	TrainingDataset = "training_set"
)

// PhotozReferenceRows is the number of positive spec-z rows in
// PhotozReferenceDataset.
const PhotozReferenceRows = 28

// TestdataDir returns the repository testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func TestdataDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata")
}

// Draw collects n samples from draw.
func Draw(n int, draw func() float64) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = draw()
	}
	return samples
}

// AssertMeanWithinStdErr checks that the sample mean is within k standard
// errors of want.
func AssertMeanWithinStdErr(t *testing.T, name string, samples []float64, want, k float64) {
	t.Helper()
	mean, sd := stat.MeanStdDev(samples, nil)
	stdErr := sd / math.Sqrt(float64(len(samples)))
	if math.Abs(mean-want) > k*stdErr {
		t.Errorf("%s: mean = %.5f, want %.5f ± %.1f×%.5f", name, mean, want, k, stdErr)
	}
}

// AssertStdDevWithin checks the sample standard deviation against want with
// relative tolerance relTol.
func AssertStdDevWithin(t *testing.T, name string, samples []float64, want, relTol float64) {
	t.Helper()
	sd := stat.StdDev(samples, nil)
	if math.Abs(sd-want)/want > relTol {
		t.Errorf("%s: sd = %.5f, want %.5f (within %.0f%%)", name, sd, want, relTol*100)
	}
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
