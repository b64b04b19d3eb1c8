//go:build !linux

package ws281x

import "fmt"

type pwmTransport struct{}

func newPWMTransport() Transport { return &pwmTransport{} }

func (t *pwmTransport) Init(cfg TransportConfig) error {
	return fmt.Errorf("ws281x: PWM/DMA transport not supported on this platform")
}
func (t *pwmTransport) Render(f *Frame) error { return ErrNotInitialized }
func (t *pwmTransport) Wait() error           { return ErrNotInitialized }
func (t *pwmTransport) Fini() error           { return nil }
