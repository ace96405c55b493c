package sim

// Metadata is the per-object record of a reference or augmented source.
// Columns the engine does not interpret are carried verbatim in Extra.
type Metadata struct {
	ObjectID        string
	Redshift        float64
	HostSpecz       float64
	HostPhotoz      float64
	HostPhotozError float64
	Distmod         float64
	Galactic        bool
	DDF             bool
	MWEBV           float64

	// AugmentBrightness is the magnitude shift applied to a galactic
	// augmented object. Zero for reference objects.
	AugmentBrightness float64

	RA, Dec    float64
	GalL, GalB float64
	Target     int

	Extra map[string]string
}

// Clone returns a deep copy of m.
func (m Metadata) Clone() Metadata {
	if m.Extra != nil {
		extra := make(map[string]string, len(m.Extra))
		for k, v := range m.Extra {
			extra[k] = v
		}
		m.Extra = extra
	}
	return m
}

// ObjectClass is either Galactic or Extragalactic.
type ObjectClass interface {
	isObjectClass()
}

// Galactic objects keep redshift zero and are re-brightened instead.
type Galactic struct {
	// Brightness is a magnitude offset; negative values are brighter.
	Brightness float64
}

// Extragalactic objects are moved to a new redshift.
type Extragalactic struct {
	Redshift    float64
	Photoz      float64
	PhotozError float64
	Distmod     float64
}

func (Galactic) isObjectClass()      {}
func (Extragalactic) isObjectClass() {}

// Region is the survey footprint an object was observed in.
type Region int

const (
	WideField Region = iota
	DeepField
)

func (r Region) String() string {
	if r == DeepField {
		return "ddf"
	}
	return "wfd"
}

// RegionOf maps the ddf flag to a Region.
func RegionOf(ddf bool) Region {
	if ddf {
		return DeepField
	}
	return WideField
}

// AugmentedMetadata is the metadata of one synthetic object. It is created
// from a copy of the reference metadata and not mutated after detection.
type AugmentedMetadata struct {
	Reference Metadata
	Class     ObjectClass
	Region    Region
	MWEBV     float64
}

// Flatten returns the record written for the augmented object: the
// reference columns with the augmented fields overwritten.
func (a *AugmentedMetadata) Flatten() Metadata {
	m := a.Reference.Clone()
	m.DDF = a.Region == DeepField
	m.MWEBV = a.MWEBV

	switch c := a.Class.(type) {
	case Galactic:
		m.Redshift = 0
		m.HostSpecz = 0
		m.HostPhotoz = 0
		m.HostPhotozError = 0
		m.AugmentBrightness = c.Brightness
	case Extragalactic:
		m.Redshift = c.Redshift
		m.HostSpecz = c.Redshift
		m.HostPhotoz = c.Photoz
		m.HostPhotozError = c.PhotozError
		m.Distmod = c.Distmod
		m.AugmentBrightness = 0
	}
	return m
}

// Object is a source with its metadata and light curve.
type Object struct {
	Metadata     Metadata
	Observations ObservationTable
}
