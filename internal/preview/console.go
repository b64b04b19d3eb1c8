package preview

import (
	"fmt"
	"image"
	"image/color"

	"periph.io/x/conn/v3/display"
	"periph.io/x/extra/devices/screen"

	ws281x "github.com/coreman2200/funtimes-ws281x"
)

// Console paints channel 0 as a row of ANSI color cells on stdout.
type Console struct {
	info   ws281x.ChannelInfo
	drawer display.Drawer
	img    *image.NRGBA
}

func NewConsole() *Console { return &Console{} }

func (c *Console) Init(cfg ws281x.TransportConfig) error {
	if len(cfg.Channels) != 1 {
		return fmt.Errorf("%w: console preview drives exactly one channel, got %d",
			ws281x.ErrInvalidConfiguration, len(cfg.Channels))
	}
	c.info = cfg.Channels[0]
	c.drawer = screen.New(c.info.Count)
	c.img = image.NewNRGBA(image.Rect(0, 0, c.info.Count, 1))
	return nil
}

func (c *Console) Render(f *ws281x.Frame) error {
	if c.drawer == nil {
		return ws281x.ErrNotInitialized
	}
	data := f.Channels[0]
	st := c.info.StripType
	for i := 0; i < c.info.Count; i++ {
		// Reassemble the canonical pixel from the wire-ordered bytes,
		// then let the white component lighten the cell since the
		// console has no separate white emitter.
		off := i * c.info.Colors
		var p ws281x.Pixel
		p |= ws281x.Pixel(data[off]) << st.Shift1()
		p |= ws281x.Pixel(data[off+1]) << st.Shift2()
		p |= ws281x.Pixel(data[off+2]) << st.Shift3()
		if c.info.Colors == 4 {
			p |= ws281x.Pixel(data[off+3]) << st.Shift4()
		}
		c.img.SetNRGBA(i, 0, color.NRGBA{
			R: satAdd(p.R(), p.W()),
			G: satAdd(p.G(), p.W()),
			B: satAdd(p.B(), p.W()),
			A: 0xff,
		})
	}
	if err := c.drawer.Draw(c.drawer.Bounds(), c.img, image.Point{}); err != nil {
		return err
	}
	fmt.Printf("\n")
	return nil
}

func (c *Console) Wait() error { return nil }

func (c *Console) Fini() error {
	if c.drawer == nil {
		return nil
	}
	err := c.drawer.Halt()
	c.drawer = nil
	return err
}

func satAdd(a, b uint8) uint8 {
	s := uint16(a) + uint16(b)
	if s > 0xff {
		return 0xff
	}
	return uint8(s)
}
