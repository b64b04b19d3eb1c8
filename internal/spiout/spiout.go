// Package spiout is an alternate transport for strips wired to the SPI
// MOSI line instead of a PWM pin. The NRZ coding is done by periph.io's
// nrzled device at roughly three SPI bits per data bit, so the port clock
// runs at about three times the strip frequency.
//
// SPI drives exactly one channel; multi-channel setups need the PWM/DMA
// transport.
package spiout

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"

	ws281x "github.com/coreman2200/funtimes-ws281x"
)

// Transport implements ws281x.Transport over spidev.
type Transport struct {
	portName string
	port     spi.PortCloser
	dev      *nrzled.Dev
}

// New prepares a transport on the named SPI port. An empty name picks the
// first registered port.
func New(portName string) *Transport {
	return &Transport{portName: portName}
}

// NewWithPort prepares a transport on an already open port. Tests hand in
// spitest ports here.
func NewWithPort(port spi.PortCloser) *Transport {
	return &Transport{port: port}
}

func (t *Transport) Init(cfg ws281x.TransportConfig) error {
	if t.dev != nil {
		return fmt.Errorf("%w: transport already initialized", ws281x.ErrInvalidConfiguration)
	}
	if len(cfg.Channels) != 1 {
		return fmt.Errorf("%w: SPI transport drives exactly one channel, got %d", ws281x.ErrInvalidConfiguration, len(cfg.Channels))
	}
	port := t.port
	if port == nil {
		if _, err := host.Init(); err != nil {
			return fmt.Errorf("spiout: host init: %w", err)
		}
		p, err := spireg.Open(t.portName)
		if err != nil {
			return fmt.Errorf("spiout: open %q: %w", t.portName, err)
		}
		port = p
	}
	ch := cfg.Channels[0]
	opts := nrzled.Opts{
		NumPixels: ch.Count,
		Channels:  ch.Colors,
		Freq:      cfg.Frequency*3 + 100*physic.KiloHertz,
	}
	dev, err := nrzled.NewSPI(port, &opts)
	if err != nil {
		_ = port.Close()
		return fmt.Errorf("spiout: %w", err)
	}
	t.port = port
	t.dev = dev
	return nil
}

// Render writes the channel's wire-ordered bytes; nrzled encodes and
// latches them. The write returning means the kernel owns the buffer, so
// there is nothing left to Wait for.
func (t *Transport) Render(f *ws281x.Frame) error {
	if t.dev == nil {
		return ws281x.ErrNotInitialized
	}
	if _, err := t.dev.Write(f.Channels[0]); err != nil {
		return fmt.Errorf("%w: %v", ws281x.ErrTransmitFailure, err)
	}
	return nil
}

func (t *Transport) Wait() error {
	if t.dev == nil {
		return ws281x.ErrNotInitialized
	}
	return nil
}

func (t *Transport) Fini() error {
	if t.dev != nil {
		_ = t.dev.Halt()
		t.dev = nil
	}
	if t.port != nil {
		_ = t.port.Close()
		t.port = nil
	}
	return nil
}
