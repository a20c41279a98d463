// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

// BlendFactor is a fixed-function blend factor.
type BlendFactor uint8

const (
	// BlendZero contributes nothing from the term it scales.
	BlendZero BlendFactor = iota

	// BlendOne passes the term through unscaled.
	BlendOne
)

// BlendEquation combines the scaled source and destination terms.
type BlendEquation uint8

const (
	// BlendEqAdd sums source and destination.
	BlendEqAdd BlendEquation = iota

	// BlendEqMax keeps the channel-wise maximum. This is an optional GPU
	// capability; pools report support via SupportsBlendMinMax.
	BlendEqMax
)

// WriteMask selects which color channels a pass may write.
type WriteMask uint8

// Write mask bits.
const (
	WriteR WriteMask = 1 << iota
	WriteG
	WriteB
	WriteA

	// WriteRGB writes the color channels and leaves alpha untouched.
	WriteRGB = WriteR | WriteG | WriteB

	// WriteRGBA writes all four channels.
	WriteRGBA = WriteRGB | WriteA
)

// PassVariant selects the fragment evaluation of the density shader.
type PassVariant uint8

const (
	// PassDensity accumulates the Gaussian falloff of each point into the
	// alpha channel with additive blending.
	PassDensity PassVariant = iota

	// PassMinDistance writes 1 minus the normalized distance to each
	// point's surface into alpha with MAX blending, so the maximum across
	// points is the minimum distance (inverted-distance trick).
	PassMinDistance

	// PassGroupID overwrites RGB with the codec-packed group id of points
	// that own the cell, decided by comparison against the min-distance
	// texture.
	PassGroupID
)

// String returns the shader define name of the variant.
func (v PassVariant) String() string {
	switch v {
	case PassDensity:
		return "CALC_DENSITY"
	case PassMinDistance:
		return "CALC_MIN_DISTANCE"
	case PassGroupID:
		return "CALC_GROUP_ID"
	}
	return "UNKNOWN"
}

// PassConfig is an immutable description of one accumulation pass: the
// fragment variant plus the fixed-function blend and write-mask state under
// which the shared instanced draw is replayed. Representing passes as plain
// records keeps the three-pass sequence explicit instead of scattering state
// mutation across setup functions.
type PassConfig struct {
	Variant   PassVariant
	SrcFactor BlendFactor
	DstFactor BlendFactor
	Equation  BlendEquation
	Mask      WriteMask
}

// The three pass configurations of the density pipeline. All replay the
// identical instance set; only fixed-function state and the fragment variant
// differ.
var (
	// DensityPass: additive alpha accumulation.
	DensityPass = PassConfig{
		Variant:   PassDensity,
		SrcFactor: BlendOne,
		DstFactor: BlendOne,
		Equation:  BlendEqAdd,
		Mask:      WriteA,
	}

	// MinDistancePass: MAX-blended alpha. Requires SupportsBlendMinMax.
	MinDistancePass = PassConfig{
		Variant:   PassMinDistance,
		SrcFactor: BlendOne,
		DstFactor: BlendOne,
		Equation:  BlendEqMax,
		Mask:      WriteA,
	}

	// GroupIDPass: plain overwrite of RGB, alpha untouched.
	GroupIDPass = PassConfig{
		Variant:   PassGroupID,
		SrcFactor: BlendOne,
		DstFactor: BlendZero,
		Equation:  BlendEqAdd,
		Mask:      WriteRGB,
	}
)
