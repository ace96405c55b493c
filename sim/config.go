package sim

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// SurveyConfig holds every empirically calibrated constant of the
// augmentation model. DefaultSurveyConfig returns the PLAsTiCC calibration.
type SurveyConfig struct {
	Photoz     PhotozConfig     `yaml:"photoz"`
	Redshift   RedshiftConfig   `yaml:"redshift"`
	Galactic   GalacticConfig   `yaml:"galactic"`
	Region     RegionConfig     `yaml:"region"`
	Extinction ExtinctionConfig `yaml:"extinction"`
	Cadence    CadenceConfig    `yaml:"cadence"`
	Noise      NoiseConfig      `yaml:"noise"`
	Detection  DetectionConfig  `yaml:"detection"`
	Augment    AugmentConfig    `yaml:"augment"`
}

// PhotozConfig parameterizes the photo-z simulator.
type PhotozConfig struct {
	ErrorScatter float64 `yaml:"error_scatter"` // sd of the multiplicative error perturbation
	MaxAttempts  int     `yaml:"max_attempts"`  // bound on non-negativity rejections
}

// RedshiftConfig bounds the new redshift relative to the template redshift z0:
// [MinFactor*z0, min(MaxFactor*z0, ExtrapolationLimit*(1+z0)-1)].
type RedshiftConfig struct {
	MinFactor          float64 `yaml:"min_factor"`
	MaxFactor          float64 `yaml:"max_factor"`
	ExtrapolationLimit float64 `yaml:"extrapolation_limit"`
}

// GalacticConfig holds the brightness offset distribution in magnitudes.
type GalacticConfig struct {
	Brightness NormalSampler `yaml:"brightness"`
}

// RegionConfig holds the probability that a deep-field reference yields a
// deep-field augmented object.
type RegionConfig struct {
	DDFKeepProbability float64 `yaml:"ddf_keep_probability"`
}

// ExtinctionConfig holds the sd of the multiplicative mwebv perturbation.
type ExtinctionConfig struct {
	Scatter float64 `yaml:"scatter"`
}

// CadenceConfig holds the epoch-count distributions per region.
type CadenceConfig struct {
	DDF      NormalSampler      `yaml:"ddf"`
	DDFFloor int                `yaml:"ddf_floor"`
	WFD      []MixtureComponent `yaml:"wfd"`
	WFDFloor int                `yaml:"wfd_floor"`
}

// BandNoiseModel maps a band to the lognormal distribution of its
// additive noise amplitude.
type BandNoiseModel map[Band]LogNormalSampler

// NoiseConfig holds one BandNoiseModel per region.
type NoiseConfig struct {
	DDF BandNoiseModel `yaml:"ddf"`
	WFD BandNoiseModel `yaml:"wfd"`
}

// ForRegion returns the noise model of region r.
func (n NoiseConfig) ForRegion(r Region) BandNoiseModel {
	if r == DeepField {
		return n.DDF
	}
	return n.WFD
}

// DetectionConfig parameterizes p = (erf((s2n - Threshold) / Width) + 1) / 2.
type DetectionConfig struct {
	Threshold     float64 `yaml:"threshold"`
	Width         float64 `yaml:"width"`
	MinDetections int     `yaml:"min_detections"`
}

// AugmentConfig bounds whole-object augmentation.
type AugmentConfig struct {
	MaxObjectAttempts int `yaml:"max_object_attempts"`
}

// DefaultSurveyConfig returns the PLAsTiCC calibration.
func DefaultSurveyConfig() SurveyConfig {
	return SurveyConfig{
		Photoz: PhotozConfig{ErrorScatter: 0.05, MaxAttempts: 1000},
		Redshift: RedshiftConfig{
			MinFactor:          0.95,
			MaxFactor:          5,
			ExtrapolationLimit: 1.5,
		},
		Galactic:   GalacticConfig{Brightness: NormalSampler{Mean: 0.5, StdDev: 0.5}},
		Region:     RegionConfig{DDFKeepProbability: 0.2},
		Extinction: ExtinctionConfig{Scatter: 0.1},
		Cadence: CadenceConfig{
			DDF:      NormalSampler{Mean: 330, StdDev: 30},
			DDFFloor: 1,
			WFD: []MixtureComponent{
				{Weight: 0.05, Mean: 95, StdDev: 20},
				{Weight: 0.40, Mean: 115, StdDev: 8},
				{Weight: 0.55, Mean: 138, StdDev: 8},
			},
			WFDFloor: 50,
		},
		Noise: NoiseConfig{
			DDF: BandNoiseModel{
				BandU: {Mu: 0.68, Sigma: 0.26},
				BandG: {Mu: 0.25, Sigma: 0.50},
				BandR: {Mu: 0.16, Sigma: 0.36},
				BandI: {Mu: 0.53, Sigma: 0.27},
				BandZ: {Mu: 0.88, Sigma: 0.22},
				BandY: {Mu: 1.76, Sigma: 0.23},
			},
			WFD: BandNoiseModel{
				BandU: {Mu: 2.34, Sigma: 0.43},
				BandG: {Mu: 0.94, Sigma: 0.41},
				BandR: {Mu: 1.30, Sigma: 0.41},
				BandI: {Mu: 1.82, Sigma: 0.42},
				BandZ: {Mu: 2.56, Sigma: 0.36},
				BandY: {Mu: 3.33, Sigma: 0.37},
			},
		},
		Detection: DetectionConfig{Threshold: 5.5, Width: 2, MinDetections: 2},
		Augment:   AugmentConfig{MaxObjectAttempts: 10},
	}
}

// LoadSurveyConfig reads a YAML file on top of DefaultSurveyConfig, so a
// file only needs the keys it overrides. Uses strict parsing: unrecognized
// keys (typos) are rejected.
func LoadSurveyConfig(path string) (*SurveyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading survey config: %w", err)
	}
	cfg := DefaultSurveyConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing survey config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid survey config: %w", err)
	}
	return &cfg, nil
}

// Validate checks ranges of every field.
func (c *SurveyConfig) Validate() error {
	if err := validateNonNegative("photoz.error_scatter", c.Photoz.ErrorScatter); err != nil {
		return err
	}
	if c.Photoz.MaxAttempts < 1 {
		return fmt.Errorf("photoz.max_attempts must be >= 1, got %d", c.Photoz.MaxAttempts)
	}
	if err := validateFinitePositive("redshift.min_factor", c.Redshift.MinFactor); err != nil {
		return err
	}
	if err := validateFinitePositive("redshift.max_factor", c.Redshift.MaxFactor); err != nil {
		return err
	}
	if c.Redshift.MinFactor > c.Redshift.MaxFactor {
		return fmt.Errorf("redshift.min_factor %g exceeds redshift.max_factor %g", c.Redshift.MinFactor, c.Redshift.MaxFactor)
	}
	if l := c.Redshift.ExtrapolationLimit; !(l > 1) || math.IsInf(l, 0) {
		return fmt.Errorf("redshift.extrapolation_limit must be a finite number > 1, got %g", c.Redshift.ExtrapolationLimit)
	}
	if err := validateFinite("galactic.brightness.mean", c.Galactic.Brightness.Mean); err != nil {
		return err
	}
	if err := validateNonNegative("galactic.brightness.std_dev", c.Galactic.Brightness.StdDev); err != nil {
		return err
	}
	if p := c.Region.DDFKeepProbability; math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("region.ddf_keep_probability must be in [0, 1], got %g", p)
	}
	if err := validateNonNegative("extinction.scatter", c.Extinction.Scatter); err != nil {
		return err
	}
	if err := validateFinite("cadence.ddf.mean", c.Cadence.DDF.Mean); err != nil {
		return err
	}
	if err := validateNonNegative("cadence.ddf.std_dev", c.Cadence.DDF.StdDev); err != nil {
		return err
	}
	if len(c.Cadence.WFD) == 0 {
		return fmt.Errorf("cadence.wfd requires at least one mixture component")
	}
	for i, comp := range c.Cadence.WFD {
		if err := validateNonNegative(fmt.Sprintf("cadence.wfd[%d].weight", i), comp.Weight); err != nil {
			return err
		}
		if err := validateFinite(fmt.Sprintf("cadence.wfd[%d].mean", i), comp.Mean); err != nil {
			return err
		}
		if err := validateNonNegative(fmt.Sprintf("cadence.wfd[%d].std_dev", i), comp.StdDev); err != nil {
			return err
		}
	}
	if c.Cadence.DDFFloor < 1 || c.Cadence.WFDFloor < 1 {
		return fmt.Errorf("cadence floors must be >= 1, got ddf=%d wfd=%d", c.Cadence.DDFFloor, c.Cadence.WFDFloor)
	}
	for name, model := range map[string]BandNoiseModel{"ddf": c.Noise.DDF, "wfd": c.Noise.WFD} {
		for _, band := range Bands {
			params, ok := model[band]
			if !ok {
				return fmt.Errorf("noise.%s is missing band %s", name, band)
			}
			if err := validateFinite(fmt.Sprintf("noise.%s.%s.mu", name, band), params.Mu); err != nil {
				return err
			}
			if err := validateNonNegative(fmt.Sprintf("noise.%s.%s.sigma", name, band), params.Sigma); err != nil {
				return err
			}
		}
		for band := range model {
			if !band.IsValid() {
				return fmt.Errorf("noise.%s: %w %q", name, ErrUnknownBand, band)
			}
		}
	}
	if err := validateFinite("detection.threshold", c.Detection.Threshold); err != nil {
		return err
	}
	if err := validateFinitePositive("detection.width", c.Detection.Width); err != nil {
		return err
	}
	if c.Detection.MinDetections < 0 {
		return fmt.Errorf("detection.min_detections must be non-negative, got %d", c.Detection.MinDetections)
	}
	if c.Augment.MaxObjectAttempts < 1 {
		return fmt.Errorf("augment.max_object_attempts must be >= 1, got %d", c.Augment.MaxObjectAttempts)
	}
	return nil
}

func validateFinite(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}

func validateNonNegative(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val < 0 {
		return fmt.Errorf("%s must be non-negative, got %f", name, val)
	}
	return nil
}
