package ws281x

import (
	"fmt"

	"github.com/coreman2200/funtimes-ws281x/internal/encoder"
	"github.com/coreman2200/funtimes-ws281x/internal/rpihw"
)

// ChannelConfig describes one strip. GPIOPin, Count, StripType and Invert
// are fixed once the driver is initialized; Brightness and Gamma can be
// updated live through the Driver and take effect on the next Render.
type ChannelConfig struct {
	// GPIOPin is the BCM pin number carrying the data line. It must be
	// PWM-capable (12, 13, 18, 19 on the 40-pin header).
	GPIOPin int

	// Invert flips the signal for strips behind an inverting level
	// shifter.
	Invert bool

	// Brightness scales every component, up to 255 (full). Zero takes the
	// default of 255; dim to black at runtime with Driver.SetBrightness.
	Brightness uint8

	// StripType is the wire color ordering. Zero means StripWS2812 (GRB).
	StripType StripType

	// Gamma is a 256-entry correction table applied before brightness.
	// Nil means identity.
	Gamma []uint8

	// Count is the number of pixels on the strip.
	Count int
}

// NewChannelConfig returns a config with the usual defaults: full
// brightness, GRB ordering, identity gamma.
func NewChannelConfig(gpioPin, count int) ChannelConfig {
	return ChannelConfig{
		GPIOPin:    gpioPin,
		Brightness: DefaultBrightness,
		StripType:  StripWS2812,
		Count:      count,
	}
}

func (c *ChannelConfig) validate() error {
	if _, ok := rpihw.PWMPinInfo(c.GPIOPin); !ok {
		return fmt.Errorf("%w: GPIO %d has no PWM function", ErrInvalidConfiguration, c.GPIOPin)
	}
	if c.Count < 0 {
		return fmt.Errorf("%w: pixel count %d", ErrInvalidConfiguration, c.Count)
	}
	if c.Gamma != nil && len(c.Gamma) != 256 {
		return fmt.Errorf("%w: gamma table has %d entries, want 256", ErrInvalidConfiguration, len(c.Gamma))
	}
	if c.StripType.ColorsPerPixel() == 3 && c.StripType&0x00ffffff == 0 {
		return fmt.Errorf("%w: strip type %#08x", ErrInvalidConfiguration, uint32(c.StripType))
	}
	return nil
}

// channel is the runtime state of one configured strip.
type channel struct {
	cfg ChannelConfig
	pin rpihw.PWMPin
	buf *Buffer
	enc encoder.Channel
}

func newChannel(cfg ChannelConfig) (*channel, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	pin, _ := rpihw.PWMPinInfo(cfg.GPIOPin)
	ch := &channel{
		cfg: cfg,
		pin: pin,
		buf: newBuffer(cfg.Count),
		enc: encoder.Channel{
			Brightness: cfg.Brightness,
			Shift1:     cfg.StripType.Shift1(),
			Shift2:     cfg.StripType.Shift2(),
			Shift3:     cfg.StripType.Shift3(),
			Shift4:     cfg.StripType.Shift4(),
			Colors:     cfg.StripType.ColorsPerPixel(),
		},
	}
	if cfg.Gamma != nil {
		copy(ch.enc.Gamma[:], cfg.Gamma)
	} else {
		for i := range ch.enc.Gamma {
			ch.enc.Gamma[i] = uint8(i)
		}
	}
	return ch, nil
}

func (ch *channel) info() ChannelInfo {
	return ChannelInfo{
		GPIOPin:   ch.cfg.GPIOPin,
		Slot:      ch.pin.Slot,
		Fsel:      ch.pin.Fsel,
		Invert:    ch.cfg.Invert,
		Count:     ch.cfg.Count,
		Colors:    ch.enc.Colors,
		StripType: ch.cfg.StripType,
	}
}
