package ws281x

// Pixel is one LED's color, packed as w<<24 | r<<16 | g<<8 | b.
//
// The white component is only emitted on four-color (SK6812W) strips;
// three-color strips ignore it.
type Pixel uint32

// Color packs red, green and blue into a Pixel with no white component.
func Color(r, g, b uint8) Pixel {
	return ColorRGBW(r, g, b, 0)
}

// ColorRGBW packs all four components into a Pixel.
func ColorRGBW(r, g, b, w uint8) Pixel {
	return Pixel(uint32(w)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// R returns the red component.
func (p Pixel) R() uint8 { return uint8(p >> 16) }

// G returns the green component.
func (p Pixel) G() uint8 { return uint8(p >> 8) }

// B returns the blue component.
func (p Pixel) B() uint8 { return uint8(p) }

// W returns the white component.
func (p Pixel) W() uint8 { return uint8(p >> 24) }
