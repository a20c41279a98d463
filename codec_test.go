package densityfield

import (
	"errors"
	"testing"
)

func TestCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    uint32
	}{
		{"zero", 0},
		{"one", 1},
		{"single byte", 200},
		{"two bytes", 0x1234},
		{"three bytes", 0xABCDEF},
		{"max", CodecMax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, err := EncodeRGB(tt.v)
			if err != nil {
				t.Fatalf("EncodeRGB(%d) error: %v", tt.v, err)
			}
			if got := DecodeRGB(r, g, b); got != tt.v {
				t.Errorf("DecodeRGB(EncodeRGB(%d)) = %d", tt.v, got)
			}
		})
	}
}

func TestCodec_RoundTripExhaustiveLowRange(t *testing.T) {
	// Every value with a distinct low/mid byte pattern; covers carry
	// boundaries between channels.
	for v := uint32(0); v < 1<<16; v += 7 {
		r, g, b, err := EncodeRGB(v)
		if err != nil {
			t.Fatalf("EncodeRGB(%d) error: %v", v, err)
		}
		if got := DecodeRGB(r, g, b); got != v {
			t.Fatalf("round trip failed at %d: got %d", v, got)
		}
	}
	for _, v := range []uint32{1 << 16, 1<<16 + 1, 1<<20 - 1, 1 << 23, CodecMax} {
		r, g, b, _ := EncodeRGB(v)
		if got := DecodeRGB(r, g, b); got != v {
			t.Fatalf("round trip failed at %d: got %d", v, got)
		}
	}
}

func TestCodec_OutOfRange(t *testing.T) {
	for _, v := range []uint32{CodecMax + 1, 1 << 25, ^uint32(0)} {
		_, _, _, err := EncodeRGB(v)
		if !errors.Is(err, ErrCodecRange) {
			t.Errorf("EncodeRGB(%d) error = %v, want ErrCodecRange", v, err)
		}
	}
}

func TestCodec_DecodeFullChannelDomain(t *testing.T) {
	// Decoding never overflows: the maximum channel combination maps to
	// CodecMax exactly.
	if got := DecodeRGB(255, 255, 255); got != CodecMax {
		t.Errorf("DecodeRGB(255,255,255) = %d, want %d", got, CodecMax)
	}
	if got := DecodeRGB(0, 0, 0); got != 0 {
		t.Errorf("DecodeRGB(0,0,0) = %d, want 0", got)
	}
}
