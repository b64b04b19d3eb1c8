package ws281x

import (
	"fmt"
	"strings"
)

// StripType selects the on-wire color ordering of a strip.
//
// The tag packs, per wire slot, the bit offset at which that slot's
// component sits in the canonical Pixel layout (w<<24 | r<<16 | g<<8 | b):
// bits 23:16 for the first slot on the wire, 15:8 for the second, 7:0 for
// the third and 31:24 for the trailing white slot of four-color strips.
// The constants match the rpi_ws281x strip type values bit for bit.
type StripType uint32

// Four-color SK6812 orderings.
const (
	StripSK6812RGBW StripType = 0x18100800
	StripSK6812RBGW StripType = 0x18100008
	StripSK6812GRBW StripType = 0x18081000
	StripSK6812GBRW StripType = 0x18080010
	StripSK6812BRGW StripType = 0x18001008
	StripSK6812BGRW StripType = 0x18000810
)

// Three-color WS2811 orderings.
const (
	StripWS2811RGB StripType = 0x00100800
	StripWS2811RBG StripType = 0x00100008
	StripWS2811GRB StripType = 0x00081000
	StripWS2811GBR StripType = 0x00080010
	StripWS2811BRG StripType = 0x00001008
	StripWS2811BGR StripType = 0x00000810
)

// Common fixed LED types.
const (
	StripWS2812  = StripWS2811GRB
	StripSK6812  = StripWS2811GRB
	StripSK6812W = StripSK6812GRBW
)

// Shift1 returns the Pixel extraction shift for the first wire slot.
func (t StripType) Shift1() uint { return uint(t>>16) & 0xff }

// Shift2 returns the Pixel extraction shift for the second wire slot.
func (t StripType) Shift2() uint { return uint(t>>8) & 0xff }

// Shift3 returns the Pixel extraction shift for the third wire slot.
func (t StripType) Shift3() uint { return uint(t) & 0xff }

// Shift4 returns the Pixel extraction shift for the white wire slot, or 0
// on three-color strips.
func (t StripType) Shift4() uint { return uint(t>>24) & 0xff }

// ColorsPerPixel reports how many component bytes the strip expects per
// pixel: 4 when the ordering carries a white slot, 3 otherwise.
func (t StripType) ColorsPerPixel() int {
	if t.Shift4() != 0 {
		return 4
	}
	return 3
}

// ParseStripType converts an ordering string like "GRB" or "GRBW" into a
// StripType. R, G and B must each appear exactly once; a trailing W selects
// a four-color strip.
func ParseStripType(order string) (StripType, error) {
	s := strings.ToUpper(strings.TrimSpace(order))
	if len(s) != 3 && len(s) != 4 {
		return 0, fmt.Errorf("%w: strip order %q", ErrInvalidConfiguration, order)
	}
	// Where each component lives in the packed pixel.
	compShift := map[byte]StripType{'R': 16, 'G': 8, 'B': 0, 'W': 24}
	// Where each wire slot's shift lives in the tag.
	field := [4]uint{16, 8, 0, 24}

	var t StripType
	seen := map[byte]bool{}
	for i := 0; i < len(s); i++ {
		c := s[i]
		shift, ok := compShift[c]
		if !ok || seen[c] {
			return 0, fmt.Errorf("%w: strip order %q", ErrInvalidConfiguration, order)
		}
		if c == 'W' && i != 3 {
			return 0, fmt.Errorf("%w: strip order %q (white must be last)", ErrInvalidConfiguration, order)
		}
		seen[c] = true
		t |= shift << field[i]
	}
	if !seen['R'] || !seen['G'] || !seen['B'] {
		return 0, fmt.Errorf("%w: strip order %q", ErrInvalidConfiguration, order)
	}
	return t, nil
}
