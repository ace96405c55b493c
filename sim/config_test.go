package sim

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "survey.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultSurveyConfig_IsValid(t *testing.T) {
	cfg := DefaultSurveyConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1000, cfg.Photoz.MaxAttempts)
	assert.Equal(t, 10, cfg.Augment.MaxObjectAttempts)
	assert.Equal(t, 2, cfg.Detection.MinDetections)
	assert.Len(t, cfg.Noise.DDF, len(Bands))
	assert.Len(t, cfg.Noise.WFD, len(Bands))
}

func TestLoadSurveyConfig_PartialOverride(t *testing.T) {
	// GIVEN a file that only overrides two keys
	path := writeConfig(t, `
region:
  ddf_keep_probability: 0.5
noise:
  wfd:
    lsstg: {mu: 1.0, sigma: 0.1}
`)

	// WHEN loading it
	cfg, err := LoadSurveyConfig(path)
	require.NoError(t, err)

	// THEN the overrides apply and everything else keeps its default
	assert.Equal(t, 0.5, cfg.Region.DDFKeepProbability)
	assert.Equal(t, LogNormalSampler{Mu: 1.0, Sigma: 0.1}, cfg.Noise.WFD[BandG])
	assert.Equal(t, DefaultSurveyConfig().Noise.WFD[BandU], cfg.Noise.WFD[BandU])
	assert.Equal(t, DefaultSurveyConfig().Cadence, cfg.Cadence)
}

func TestLoadSurveyConfig_UnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, `
detection:
  treshold: 4
`)
	_, err := LoadSurveyConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "treshold")
}

func TestLoadSurveyConfig_InvalidValueRejected(t *testing.T) {
	path := writeConfig(t, `
region:
  ddf_keep_probability: 1.5
`)
	_, err := LoadSurveyConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ddf_keep_probability")
}

func TestLoadSurveyConfig_NaNExtrapolationLimitRejected(t *testing.T) {
	path := writeConfig(t, `
redshift:
  extrapolation_limit: .nan
`)
	_, err := LoadSurveyConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extrapolation_limit")
}

func TestLoadSurveyConfig_MissingFile(t *testing.T) {
	_, err := LoadSurveyConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSurveyConfig_YAMLRoundTrip(t *testing.T) {
	// GIVEN the defaults rendered as YAML
	data, err := yaml.Marshal(DefaultSurveyConfig())
	require.NoError(t, err)

	// WHEN loading the rendered file
	cfg, err := LoadSurveyConfig(writeConfig(t, string(data)))
	require.NoError(t, err)

	// THEN nothing changed
	assert.Equal(t, DefaultSurveyConfig(), *cfg)
}

func TestSurveyConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SurveyConfig)
		errSub string
	}{
		{"zero photoz attempts", func(c *SurveyConfig) { c.Photoz.MaxAttempts = 0 }, "photoz.max_attempts"},
		{"negative error scatter", func(c *SurveyConfig) { c.Photoz.ErrorScatter = -1 }, "photoz.error_scatter"},
		{"inverted redshift factors", func(c *SurveyConfig) { c.Redshift.MinFactor = 6 }, "min_factor"},
		{"extrapolation limit at 1", func(c *SurveyConfig) { c.Redshift.ExtrapolationLimit = 1 }, "extrapolation_limit"},
		{"nan keep probability", func(c *SurveyConfig) { c.Region.DDFKeepProbability = math.NaN() }, "ddf_keep_probability"},
		{"empty wfd mixture", func(c *SurveyConfig) { c.Cadence.WFD = nil }, "cadence.wfd"},
		{"zero floor", func(c *SurveyConfig) { c.Cadence.DDFFloor = 0 }, "floors"},
		{"missing band", func(c *SurveyConfig) {
			c.Noise.DDF = BandNoiseModel{BandG: {Mu: 1, Sigma: 1}}
		}, "missing band"},
		{"unknown band", func(c *SurveyConfig) {
			c.Noise.WFD = BandNoiseModel{}
			for b, p := range DefaultSurveyConfig().Noise.WFD {
				c.Noise.WFD[b] = p
			}
			c.Noise.WFD["lsstx"] = LogNormalSampler{}
		}, "unknown band"},
		{"nan extrapolation limit", func(c *SurveyConfig) { c.Redshift.ExtrapolationLimit = math.NaN() }, "extrapolation_limit"},
		{"nan brightness mean", func(c *SurveyConfig) { c.Galactic.Brightness.Mean = math.NaN() }, "galactic.brightness.mean"},
		{"infinite ddf cadence mean", func(c *SurveyConfig) { c.Cadence.DDF.Mean = math.Inf(1) }, "cadence.ddf.mean"},
		{"nan wfd component mean", func(c *SurveyConfig) { c.Cadence.WFD[1].Mean = math.NaN() }, "cadence.wfd[1].mean"},
		{"nan noise mu", func(c *SurveyConfig) { c.Noise.DDF[BandZ] = LogNormalSampler{Mu: math.NaN(), Sigma: 0.2} }, "noise.ddf.lsstz.mu"},
		{"nan detection threshold", func(c *SurveyConfig) { c.Detection.Threshold = math.NaN() }, "detection.threshold"},
		{"zero detection width", func(c *SurveyConfig) { c.Detection.Width = 0 }, "detection.width"},
		{"zero object attempts", func(c *SurveyConfig) { c.Augment.MaxObjectAttempts = 0 }, "max_object_attempts"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultSurveyConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errSub)
		})
	}
}
