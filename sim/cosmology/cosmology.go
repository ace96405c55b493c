// Package cosmology computes distances in a flat ΛCDM universe.
package cosmology

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// SpeedOfLight in km/s.
const SpeedOfLight = 299792.458

// quadratureNodes is the number of Gauss-Legendre nodes for the comoving
// distance integral. The integrand is smooth, so this is well below 1e-8
// relative error for z < 10.
const quadratureNodes = 64

// FlatLambdaCDM is a flat universe with matter and a cosmological constant.
// Radiation is neglected.
type FlatLambdaCDM struct {
	H0  float64 // Hubble constant in km/s/Mpc
	Om0 float64 // matter density at z=0
}

// PLAsTiCC is the cosmology the PLAsTiCC simulations were generated with.
var PLAsTiCC = FlatLambdaCDM{H0: 70, Om0: 0.3}

// New validates the parameters.
func New(h0, om0 float64) (FlatLambdaCDM, error) {
	if !(h0 > 0) || math.IsInf(h0, 0) {
		return FlatLambdaCDM{}, fmt.Errorf("H0 must be a finite positive number, got %g", h0)
	}
	if !(om0 >= 0 && om0 <= 1) {
		return FlatLambdaCDM{}, fmt.Errorf("Om0 must be in [0, 1], got %g", om0)
	}
	return FlatLambdaCDM{H0: h0, Om0: om0}, nil
}

// E returns H(z)/H0.
func (c FlatLambdaCDM) E(z float64) float64 {
	zp1 := 1 + z
	return math.Sqrt(c.Om0*zp1*zp1*zp1 + (1 - c.Om0))
}

// HubbleDistance returns c/H0 in Mpc.
func (c FlatLambdaCDM) HubbleDistance() float64 {
	return SpeedOfLight / c.H0
}

// ComovingDistance returns the line-of-sight comoving distance to z in Mpc.
func (c FlatLambdaCDM) ComovingDistance(z float64) float64 {
	if z <= 0 {
		return 0
	}
	integral := quad.Fixed(func(x float64) float64 { return 1 / c.E(x) }, 0, z, quadratureNodes, nil, 0)
	return c.HubbleDistance() * integral
}

// LuminosityDistance returns the luminosity distance to z in Mpc.
func (c FlatLambdaCDM) LuminosityDistance(z float64) float64 {
	return (1 + z) * c.ComovingDistance(z)
}

// DistanceModulus returns 5 log10(D_L / 10 pc). It is -Inf at z = 0 and
// NaN for negative or non-finite z.
func (c FlatLambdaCDM) DistanceModulus(z float64) float64 {
	if math.IsNaN(z) || math.IsInf(z, 0) || z < 0 {
		return math.NaN()
	}
	if z == 0 {
		return math.Inf(-1)
	}
	return 5*math.Log10(c.LuminosityDistance(z)) + 25
}
