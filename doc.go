// Package ws281x drives WS281x and SK6812 addressable LED strips from a
// Raspberry Pi.
//
// The strips speak a single-wire, self-clocked NRZ protocol: every data bit
// is a fixed-width pulse whose high time selects a one or a zero, and a long
// low gap after the last bit latches the frame. This package synthesizes
// that waveform with the BCM283x PWM peripheral running in serializer mode,
// fed by DMA so the CPU never touches the signal timing.
//
// A Driver owns one or two channels (one per physical PWM output), each with
// its own pixel buffer, gamma table, brightness and color ordering. Typical
// use:
//
//	drv, err := ws281x.New(ws281x.Options{
//		Channels: []ws281x.ChannelConfig{ws281x.NewChannelConfig(18, 150)},
//	})
//	if err != nil { ... }
//	if err := drv.Init(); err != nil { ... }
//	defer drv.Fini()
//
//	buf := drv.Buffer(0)
//	buf.Set(0, ws281x.Color(255, 0, 0))
//	if err := drv.Render(); err != nil { ... }
//
// Pixel buffer writes are not snapshot-isolated from a concurrent Render:
// the hardware streams the frame it was handed, so a write racing a render
// can tear across two frames. Callers that need tear-free updates must
// serialize writes against Render themselves.
//
// Peripherals (GPIO pins, PWM slots, DMA channels) are claimed process-wide
// on Init and released on Fini, so two Drivers in one process can never
// fight over the same hardware.
package ws281x
