// Package encoder turns pixel values into the WS281x line coding.
//
// Encoding runs in two stages. Stage one applies the gamma lookup, scales
// by brightness and reorders components for the strip's wire order,
// yielding 3 or 4 bytes per pixel. Stage two expands those bytes into PWM
// symbols: at three PWM clocks per data bit, a one is the wide pulse 110
// and a zero the narrow pulse 100, emitted most significant bit first.
// Both stages are pure functions of their inputs, so the whole pipeline is
// testable without hardware.
package encoder

import "time"

// SymbolsPerBit is the number of PWM clock periods synthesizing one data
// bit. The PWM clock therefore runs at three times the strip frequency.
const SymbolsPerBit = 3

const (
	symbolOne  = 0b110
	symbolZero = 0b100
)

// Channel carries the per-channel settings stage one needs.
type Channel struct {
	// Gamma is the 256-entry correction table, applied before brightness.
	Gamma [256]uint8

	// Brightness scales every component: scaled = v * Brightness / 255,
	// rounding down.
	Brightness uint8

	// Shift1..Shift4 give, per wire slot, the bit offset of that slot's
	// component in the packed w<<24|r<<16|g<<8|b pixel.
	Shift1, Shift2, Shift3, Shift4 uint

	// Colors is 3 or 4 (trailing white slot).
	Colors int
}

func (c *Channel) scale(v uint8) uint8 {
	return uint8(uint32(c.Gamma[v]) * uint32(c.Brightness) / 255)
}

// AppendPixel appends the wire-ordered, gamma- and brightness-corrected
// component bytes of one packed pixel to dst.
func (c *Channel) AppendPixel(dst []byte, p uint32) []byte {
	dst = append(dst,
		c.scale(uint8(p>>c.Shift1)),
		c.scale(uint8(p>>c.Shift2)),
		c.scale(uint8(p>>c.Shift3)))
	if c.Colors == 4 {
		dst = append(dst, c.scale(uint8(p>>c.Shift4)))
	}
	return dst
}

// AppendPixels runs AppendPixel over a whole buffer.
func (c *Channel) AppendPixels(dst []byte, pixels []uint32) []byte {
	for _, p := range pixels {
		dst = c.AppendPixel(dst, p)
	}
	return dst
}

// lut expands one data byte into its 24 packed symbol bits.
var lut [256][3]byte

func init() {
	for v := 0; v < 256; v++ {
		var out uint32
		for bit := 7; bit >= 0; bit-- {
			if v>>uint(bit)&1 == 1 {
				out = out<<SymbolsPerBit | symbolOne
			} else {
				out = out<<SymbolsPerBit | symbolZero
			}
		}
		lut[v] = [3]byte{byte(out >> 16), byte(out >> 8), byte(out)}
	}
}

// AppendBits expands scaled component bytes into packed PWM symbols, three
// output bytes per input byte, MSB first. With invert set every symbol is
// complemented.
func AppendBits(dst []byte, scaled []byte, invert bool) []byte {
	for _, v := range scaled {
		e := lut[v]
		if invert {
			dst = append(dst, ^e[0], ^e[1], ^e[2])
		} else {
			dst = append(dst, e[0], e[1], e[2])
		}
	}
	return dst
}

// IdleByte is the symbol fill for the reset gap and for padding: line low,
// or line high on an inverted channel.
func IdleByte(invert bool) byte {
	if invert {
		return 0xff
	}
	return 0
}

// ResetBytes returns how many symbol bytes cover a latch gap of the given
// duration at the given strip frequency, rounded up.
func ResetBytes(freqHz uint32, gap time.Duration) int {
	symbols := (uint64(freqHz)*SymbolsPerBit*uint64(gap.Nanoseconds()) + 1e9 - 1) / 1e9
	return int((symbols + 7) / 8)
}

// FrameDuration returns the on-wire time of a frame of dataBits bits plus
// the latch gap. Render completion waits are derived from it.
func FrameDuration(freqHz uint32, dataBits int, gap time.Duration) time.Duration {
	if freqHz == 0 {
		return gap
	}
	bits := time.Duration(dataBits) * time.Second / time.Duration(freqHz)
	return bits + gap
}
