package sim

import "errors"

var (
	// ErrPhotozReferenceLoad wraps failures of the one-time reference load.
	ErrPhotozReferenceLoad = errors.New("loading photo-z reference")

	// ErrEmptyPhotozTable means no reference row had a positive spec-z.
	ErrEmptyPhotozTable = errors.New("photo-z reference table has no rows")

	// ErrNoPhysicalPhotoz means every reference residual tried gave a
	// negative photo-z.
	ErrNoPhysicalPhotoz = errors.New("no non-negative photo-z found")

	// ErrInvalidRedshift means an extragalactic reference redshift cannot
	// bound a log-uniform draw.
	ErrInvalidRedshift = errors.New("invalid reference redshift")

	// ErrUnknownBand means a band has no noise model or is not a survey filter.
	ErrUnknownBand = errors.New("unknown band")

	// ErrResampleFailed is returned by a Resampler that could not produce a
	// light curve for the requested transform. The attempt is retried.
	ErrResampleFailed = errors.New("resampling failed")

	// ErrAugmentationFailed means no attempt produced a detectable light curve.
	ErrAugmentationFailed = errors.New("augmentation failed")
)
