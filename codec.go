package densityfield

import "errors"

// CodecMax is the largest value representable by the float-channel codec.
// Values are decomposed into three base-256 digits, one per color channel.
const CodecMax = 1<<24 - 1

// ErrCodecRange indicates a value outside the codec's representable domain.
// Encoding out-of-range values is a contract violation: silently truncating
// would corrupt downstream group-id lookups, so the codec refuses instead.
var ErrCodecRange = errors.New("densityfield: value outside codec range [0, 2^24)")

// EncodeRGB packs a non-negative integer into three 8-bit color channels.
// The encoding is an exact base-256 digit decomposition: DecodeRGB recovers
// the original value for every v in [0, CodecMax].
func EncodeRGB(v uint32) (r, g, b uint8, err error) {
	if v > CodecMax {
		return 0, 0, 0, ErrCodecRange
	}
	r = uint8(v >> 16)
	g = uint8(v >> 8)
	b = uint8(v)
	return r, g, b, nil
}

// DecodeRGB is the inverse of EncodeRGB. It is a pure function and accepts
// the full 0-255 domain per channel; every channel combination decodes to a
// value within [0, CodecMax], so decoding cannot fail.
func DecodeRGB(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}
