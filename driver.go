package ws281x

import (
	"fmt"
	"sync"

	"github.com/coreman2200/funtimes-ws281x/internal/claim"
	"github.com/coreman2200/funtimes-ws281x/internal/frame"
	"github.com/coreman2200/funtimes-ws281x/internal/rpihw"
)

// Driver composes the pixel buffers, the encoder and a Transport into the
// facade most programs use. One Driver owns one PWM/DMA peripheral pair;
// renders on a Driver are serialized and applied to hardware in call
// order.
type Driver struct {
	mu        sync.Mutex
	opts      Options
	chans     []*channel
	transport Transport
	registry  *claim.Registry
	claims    []claim.Resource
	frame     Frame
	ready     bool
}

// Option tweaks driver construction.
type Option func(*Driver)

// WithTransport replaces the default PWM/DMA transport, e.g. with the SPI
// or preview transports, or a fake in tests.
func WithTransport(t Transport) Option {
	return func(d *Driver) { d.transport = t }
}

// WithRegistry replaces the process-wide peripheral claim registry.
// Tests use isolated registries to stay independent.
func WithRegistry(r *claim.Registry) Option {
	return func(d *Driver) { d.registry = r }
}

// New validates the configuration and builds a Driver. No hardware is
// touched until Init.
//
// The BCM283x PWM block has two physical output slots, so a Driver takes
// one or two channels; a channel-less driver has nothing to claim or
// render and is rejected.
func New(opts Options, options ...Option) (*Driver, error) {
	opts = opts.withDefaults()
	if n := len(opts.Channels); n == 0 || n > 2 {
		return nil, fmt.Errorf("%w: %d channels, want 1 or 2", ErrInvalidConfiguration, n)
	}
	if !rpihw.DMAChannelUsable(opts.DMAChannel) {
		return nil, fmt.Errorf("%w: DMA channel %d is reserved or out of range", ErrInvalidConfiguration, opts.DMAChannel)
	}
	d := &Driver{opts: opts}
	for _, cfg := range opts.Channels {
		ch, err := newChannel(cfg)
		if err != nil {
			return nil, err
		}
		d.chans = append(d.chans, ch)
	}
	for _, o := range options {
		o(d)
	}
	if d.transport == nil {
		d.transport = newPWMTransport()
	}
	if d.registry == nil {
		d.registry = claim.Shared()
	}
	d.frame.Channels = make([][]byte, len(d.chans))
	return d, nil
}

// Init claims the peripherals and brings up the transport.
func (d *Driver) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ready {
		return fmt.Errorf("%w: already initialized", ErrInvalidConfiguration)
	}

	slots := make([]int, len(d.chans))
	for i, ch := range d.chans {
		slots[i] = ch.pin.Slot
	}
	if err := frame.CheckSlots(slots); err != nil {
		return fmt.Errorf("%w: %v", ErrChannelOverlap, err)
	}

	var resources []claim.Resource
	for _, ch := range d.chans {
		resources = append(resources,
			claim.Resource{Kind: claim.GPIO, ID: ch.cfg.GPIOPin},
			claim.Resource{Kind: claim.PWM, ID: ch.pin.Slot})
	}
	resources = append(resources, claim.Resource{Kind: claim.DMA, ID: d.opts.DMAChannel})
	if err := d.registry.Claim(resources...); err != nil {
		return fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
	}

	cfg := TransportConfig{
		Frequency:  d.opts.Frequency,
		DMAChannel: d.opts.DMAChannel,
		ResetTime:  d.opts.ResetTime,
	}
	for _, ch := range d.chans {
		cfg.Channels = append(cfg.Channels, ch.info())
	}
	if err := d.transport.Init(cfg); err != nil {
		d.registry.Release(resources...)
		return err
	}
	d.claims = resources
	d.ready = true
	return nil
}

// Buffer returns channel n's pixel buffer, or nil for an unknown channel.
// The buffer stays valid until Fini.
func (d *Driver) Buffer(n int) *Buffer {
	if n < 0 || n >= len(d.chans) {
		return nil
	}
	return d.chans[n].buf
}

// Channels returns the number of configured channels.
func (d *Driver) Channels() int { return len(d.chans) }

// Render encodes every channel's current pixel buffer and transmits the
// frame. It blocks until any previous transmission has drained and the new
// one has started; at most one transmission is ever in flight.
func (d *Driver) Render() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.renderLocked()
}

func (d *Driver) renderLocked() error {
	if !d.ready {
		return ErrNotInitialized
	}
	for i, ch := range d.chans {
		dst := d.frame.Channels[i][:0]
		for _, p := range ch.buf.pix {
			dst = ch.enc.AppendPixel(dst, uint32(p))
		}
		d.frame.Channels[i] = dst
	}
	return d.transport.Render(&d.frame)
}

// Wait blocks until the last transmission has fully drained.
func (d *Driver) Wait() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ready {
		return ErrNotInitialized
	}
	return d.transport.Wait()
}

// Clear darkens every pixel on every channel and renders once.
func (d *Driver) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, ch := range d.chans {
		ch.buf.Fill(0)
	}
	return d.renderLocked()
}

// SetBrightness updates channel n's brightness, consumed by the next
// Render.
func (d *Driver) SetBrightness(n int, v uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n < 0 || n >= len(d.chans) {
		return fmt.Errorf("%w: channel %d", ErrIndexOutOfRange, n)
	}
	d.chans[n].enc.Brightness = v
	return nil
}

// Brightness returns channel n's current brightness.
func (d *Driver) Brightness(n int) (uint8, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n < 0 || n >= len(d.chans) {
		return 0, fmt.Errorf("%w: channel %d", ErrIndexOutOfRange, n)
	}
	return d.chans[n].enc.Brightness, nil
}

// SetGamma replaces channel n's gamma table, consumed by the next Render.
// The table is copied.
func (d *Driver) SetGamma(n int, table []uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n < 0 || n >= len(d.chans) {
		return fmt.Errorf("%w: channel %d", ErrIndexOutOfRange, n)
	}
	if len(table) != 256 {
		return fmt.Errorf("%w: gamma table has %d entries, want 256", ErrInvalidConfiguration, len(table))
	}
	copy(d.chans[n].enc.Gamma[:], table)
	return nil
}

// Fini waits out (or aborts) any in-flight transmission, releases the
// hardware and the peripheral claims. Calling it on an uninitialized
// driver is a no-op; it never fails.
func (d *Driver) Fini() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ready {
		return
	}
	_ = d.transport.Fini()
	d.registry.Release(d.claims...)
	d.claims = nil
	d.ready = false
}
