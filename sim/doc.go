// Package sim synthesizes survey-consistent variants of astronomical light
// curves from labeled reference objects, for use as extra classifier
// training data.
//
// # Reading Guide
//
// The pipeline runs in this order for every augmented object:
//   - augment_metadata.go: new redshift (or galactic brightness offset),
//     survey region and extinction for the synthetic object
//   - photoz.go: cached photo-z reference table and the photo-z simulator
//   - cadence.go: target number of epochs per survey region
//   - Resampler (external, see sim/resample): noise-free fluxes at new epochs
//   - noise.go: per-band lognormal measurement noise
//   - detection.go: erf-shaped detection probability and the pass verdict
//
// augmentor.go wires these together and retries an object until its light
// curve passes detection.
//
// # Architecture
//
// Sub-packages:
//   - sim/cosmology/: distance modulus for a flat ΛCDM universe
//   - sim/dataset/: PLAsTiCC CSV loader and SQLite store
//   - sim/resample/: baseline resampler that subsamples and rescales epochs
//   - sim/trace/: augmentation attempt recording
//
// # Randomness
//
// Every draw comes from a PartitionedRNG subsystem, so a run is reproducible
// from its seed and extra draws in one stage never shift another stage.
// All calibration constants live in SurveyConfig.
package sim
