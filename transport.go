package ws281x

import (
	"time"

	"periph.io/x/conn/v3/physic"
)

// ChannelInfo is the hardware-facing description of one channel handed to
// a Transport at Init. The facade resolves pins to PWM slots before any
// hardware is touched.
type ChannelInfo struct {
	GPIOPin int
	// Slot is the physical PWM channel (0 or 1) the pin is muxed to.
	Slot int
	// Fsel is the GPIO alternate function code selecting that mux.
	Fsel   uint32
	Invert bool
	Count  int
	// Colors is the number of component bytes per pixel (3 or 4).
	Colors int
	// StripType lets presentation transports map wire slots back to
	// components; the hardware transports never look at it.
	StripType StripType
}

// TransportConfig fixes the transmission parameters for a Transport's
// lifetime. Changing any of them requires Fini and a fresh Init.
type TransportConfig struct {
	Frequency  physic.Frequency
	DMAChannel int
	// ResetTime is the latch gap appended after the last pixel.
	ResetTime time.Duration
	Channels  []ChannelInfo
}

// Frame is one render's worth of stage-one encoder output: per channel,
// the wire-ordered, gamma- and brightness-corrected component bytes. The
// slices are reused across renders; a Transport must not retain them past
// the Render call that handed them over.
type Frame struct {
	Channels [][]byte
}

// Transport owns the output hardware. The default implementation streams
// frames through the PWM peripheral paced by DMA; alternates exist for SPI
// attached strips and headless previews.
//
// Implementations serialize themselves against the physical constraint of
// one in-flight transmission: Render blocks until the previous frame has
// drained, then starts the new one. Fini is idempotent and best-effort.
type Transport interface {
	Init(cfg TransportConfig) error
	Render(f *Frame) error
	Wait() error
	Fini() error
}
