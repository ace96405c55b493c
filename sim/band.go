package sim

import "fmt"

// Band identifies an LSST filter.
type Band string

const (
	BandU Band = "lsstu"
	BandG Band = "lsstg"
	BandR Band = "lsstr"
	BandI Band = "lssti"
	BandZ Band = "lsstz"
	BandY Band = "lssty"
)

// Bands lists the survey filters in PLAsTiCC passband order (0..5).
var Bands = []Band{BandU, BandG, BandR, BandI, BandZ, BandY}

// bandCentralWavelengths holds effective filter wavelengths in Angstrom.
var bandCentralWavelengths = map[Band]float64{
	BandU: 3671.,
	BandG: 4827.,
	BandR: 6223.,
	BandI: 7546.,
	BandZ: 8691.,
	BandY: 9710.,
}

// CentralWavelength returns the band's central wavelength in Angstrom.
func (b Band) CentralWavelength() (float64, bool) {
	w, ok := bandCentralWavelengths[b]
	return w, ok
}

// IsValid reports whether b is one of the survey filters.
func (b Band) IsValid() bool {
	_, ok := bandCentralWavelengths[b]
	return ok
}

// ParseBand accepts either a band name ("lsstg") or a PLAsTiCC passband
// index ("1").
func ParseBand(s string) (Band, error) {
	if b := Band(s); b.IsValid() {
		return b, nil
	}
	if len(s) == 1 && s[0] >= '0' && int(s[0]-'0') < len(Bands) {
		return Bands[s[0]-'0'], nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBand, s)
}

// PassbandIndex returns the PLAsTiCC passband number of b, or -1.
func (b Band) PassbandIndex() int {
	for i, candidate := range Bands {
		if candidate == b {
			return i
		}
	}
	return -1
}
