package ws281x

import (
	"time"

	"periph.io/x/conn/v3/physic"
)

// Defaults matching the rpi_ws281x ecosystem.
const (
	DefaultFrequency  = 800 * physic.KiloHertz
	DefaultDMAChannel = 10
	DefaultResetTime  = 300 * time.Microsecond
	DefaultBrightness = 255
)

// Options configures a Driver. Zero fields take the defaults above; the
// channel list is mandatory.
type Options struct {
	// Frequency is the strip bit rate, typically 800 or 400 kHz. It
	// selects the PWM carrier used to synthesize the fixed protocol pulse
	// widths, not an arbitrary speed knob.
	Frequency physic.Frequency

	// DMAChannel is the DMA engine used to pace the PWM FIFO.
	DMAChannel int

	// ResetTime is the latch gap after the last pixel. The protocol
	// minimum is variant-dependent (roughly 50-300µs); the default is the
	// conservative end.
	ResetTime time.Duration

	// Channels holds one config per PWM output, at most two.
	Channels []ChannelConfig
}

func (o Options) withDefaults() Options {
	if o.Frequency == 0 {
		o.Frequency = DefaultFrequency
	}
	if o.DMAChannel == 0 {
		o.DMAChannel = DefaultDMAChannel
	}
	if o.ResetTime == 0 {
		o.ResetTime = DefaultResetTime
	}
	for i := range o.Channels {
		if o.Channels[i].StripType == 0 {
			o.Channels[i].StripType = StripWS2812
		}
		if o.Channels[i].Brightness == 0 {
			o.Channels[i].Brightness = DefaultBrightness
		}
	}
	return o
}
