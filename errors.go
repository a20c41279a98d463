package densityfield

import "errors"

// Pipeline sentinel errors. Wrap sites add context with %w so callers can
// test with errors.Is.
var (
	// ErrBadParams reports invalid sampling parameters.
	ErrBadParams = errors.New("densityfield: invalid parameters")

	// ErrNoPositions reports an empty position set or an empty boundary
	// box; there is nothing to sample.
	ErrNoPositions = errors.New("densityfield: no positions to sample")

	// ErrBlendMinMax reports that the render pool lacks the MIN/MAX blend
	// equation. The min-distance pass cannot run without it and the
	// pipeline aborts rather than produce wrong group assignments.
	ErrBlendMinMax = errors.New("densityfield: render pool does not support MIN/MAX blending")
)
