package ws281x

import "errors"

// Errors returned by the driver. Callers match them with errors.Is; most
// failures are wrapped with context about the offending pin, channel or
// register state.
var (
	// ErrInvalidConfiguration reports bad channel or driver parameters.
	// Rejected before any hardware is touched.
	ErrInvalidConfiguration = errors.New("ws281x: invalid configuration")

	// ErrResourceUnavailable reports that a GPIO pin, PWM slot or DMA
	// channel is already claimed by another active driver in this process.
	ErrResourceUnavailable = errors.New("ws281x: peripheral unavailable")

	// ErrChannelOverlap reports two configured channels mapping to the
	// same physical PWM slot.
	ErrChannelOverlap = errors.New("ws281x: channels overlap on one PWM slot")

	// ErrTransmitFailure reports a hardware error during a render. The
	// render can be retried.
	ErrTransmitFailure = errors.New("ws281x: transmit failed")

	// ErrIndexOutOfRange reports a pixel buffer access outside the
	// configured pixel count.
	ErrIndexOutOfRange = errors.New("ws281x: pixel index out of range")

	// ErrNotInitialized reports use of a driver before Init or after Fini.
	ErrNotInitialized = errors.New("ws281x: driver not initialized")
)
