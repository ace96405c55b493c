package sim

// Observation is one epoch of a light curve.
type Observation struct {
	MJD       float64
	Band      Band
	Flux      float64
	FluxError float64
	// Detected is only meaningful after SimulateDetection.
	Detected bool
}

// ObservationTable is a light curve, one row per epoch.
type ObservationTable []Observation

// Copy returns an independent copy of the table.
func (t ObservationTable) Copy() ObservationTable {
	if t == nil {
		return nil
	}
	out := make(ObservationTable, len(t))
	copy(out, t)
	return out
}

// DetectedCount returns the number of rows flagged as detected.
func (t ObservationTable) DetectedCount() int {
	n := 0
	for _, o := range t {
		if o.Detected {
			n++
		}
	}
	return n
}
