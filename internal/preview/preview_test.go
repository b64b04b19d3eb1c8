package preview

import (
	"errors"
	"testing"

	ws281x "github.com/coreman2200/funtimes-ws281x"
)

func TestConsoleInitWantsOneChannel(t *testing.T) {
	cfg := ws281x.TransportConfig{Channels: []ws281x.ChannelInfo{
		{Count: 1, Colors: 3}, {Count: 1, Colors: 3},
	}}
	err := NewConsole().Init(cfg)
	if !errors.Is(err, ws281x.ErrInvalidConfiguration) {
		t.Fatalf("two channels gave %v", err)
	}
}

func TestConsoleDecodesWireOrder(t *testing.T) {
	c := NewConsole()
	cfg := ws281x.TransportConfig{Channels: []ws281x.ChannelInfo{
		{Count: 2, Colors: 3, StripType: ws281x.StripWS2812},
	}}
	if err := c.Init(cfg); err != nil {
		t.Fatal(err)
	}
	// GRB stream: pixel 0 pure red, pixel 1 pure blue.
	f := &ws281x.Frame{Channels: [][]byte{{0x00, 0xff, 0x00, 0x00, 0x00, 0xff}}}
	if err := c.Render(f); err != nil {
		t.Fatal(err)
	}
	p0 := c.img.NRGBAAt(0, 0)
	if p0.R != 0xff || p0.G != 0 || p0.B != 0 {
		t.Fatalf("pixel 0 decoded to %+v, want red", p0)
	}
	p1 := c.img.NRGBAAt(1, 0)
	if p1.B != 0xff || p1.R != 0 {
		t.Fatalf("pixel 1 decoded to %+v, want blue", p1)
	}
	if err := c.Fini(); err != nil {
		t.Fatal(err)
	}
}

func TestConsoleWhiteLightensCell(t *testing.T) {
	c := NewConsole()
	cfg := ws281x.TransportConfig{Channels: []ws281x.ChannelInfo{
		{Count: 1, Colors: 4, StripType: ws281x.StripSK6812GRBW},
	}}
	if err := c.Init(cfg); err != nil {
		t.Fatal(err)
	}
	// G=10 R=200 B=0 W=100; white adds onto every component, clamped.
	f := &ws281x.Frame{Channels: [][]byte{{10, 200, 0, 100}}}
	if err := c.Render(f); err != nil {
		t.Fatal(err)
	}
	p := c.img.NRGBAAt(0, 0)
	if p.R != 255 || p.G != 110 || p.B != 100 {
		t.Fatalf("decoded to %+v", p)
	}
}

func TestWebBeforeInit(t *testing.T) {
	w := NewWeb(":0")
	err := w.Render(&ws281x.Frame{Channels: [][]byte{{}}})
	if !errors.Is(err, ws281x.ErrNotInitialized) {
		t.Fatalf("got %v", err)
	}
	if err := w.Fini(); err != nil {
		t.Fatal(err)
	}
}
