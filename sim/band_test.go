package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBand(t *testing.T) {
	tests := []struct {
		in   string
		want Band
	}{
		{"lsstu", BandU},
		{"lssty", BandY},
		{"0", BandU},
		{"1", BandG},
		{"5", BandY},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseBand(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseBand_Unknown(t *testing.T) {
	for _, in := range []string{"", "6", "-1", "12", "lsstx", "g"} {
		_, err := ParseBand(in)
		assert.ErrorIs(t, err, ErrUnknownBand, "input %q", in)
	}
}

func TestBand_PassbandIndexRoundTrip(t *testing.T) {
	for i, b := range Bands {
		assert.Equal(t, i, b.PassbandIndex())
		assert.True(t, b.IsValid())
	}
	assert.Equal(t, -1, Band("lsstx").PassbandIndex())
}

func TestBand_CentralWavelengthsIncrease(t *testing.T) {
	prev := 0.0
	for _, b := range Bands {
		w, ok := b.CentralWavelength()
		require.True(t, ok)
		assert.Greater(t, w, prev, "band %s", b)
		prev = w
	}
	_, ok := Band("nope").CentralWavelength()
	assert.False(t, ok)
}
