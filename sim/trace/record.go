// Package trace records augmentation attempts for offline analysis of
// detection efficiency. This package has no dependencies on sim/; it stores
// pure data types.
package trace

// AttemptRecord captures one try at producing an augmented object.
type AttemptRecord struct {
	ReferenceID   string
	AugmentedID   string
	Attempt       int
	Class         string // "galactic" or "extragalactic"
	Region        string // "ddf" or "wfd"
	Redshift      float64
	Brightness    float64
	TargetEpochs  int
	Epochs        int
	DetectedCount int
	Passed        bool
	Reason        string
}
