package rpihw

// GPIO function select codes, as written into the FSELn registers.
const (
	FselOutput uint32 = 0x1
	FselAlt0   uint32 = 0x4
	FselAlt1   uint32 = 0x5
	FselAlt5   uint32 = 0x2
)

// PWMPin describes how a GPIO reaches a PWM output.
type PWMPin struct {
	// Slot is the physical PWM channel (0 or 1) the pin is wired to.
	Slot int
	// Fsel is the alternate function code selecting the PWM mux.
	Fsel uint32
}

// The 40-pin header exposes PWM0 on GPIO 12/18 and PWM1 on GPIO 13/19;
// the remaining entries exist on compute modules.
var pwmPins = map[int]PWMPin{
	12: {Slot: 0, Fsel: FselAlt0},
	13: {Slot: 1, Fsel: FselAlt0},
	18: {Slot: 0, Fsel: FselAlt5},
	19: {Slot: 1, Fsel: FselAlt5},
	40: {Slot: 0, Fsel: FselAlt0},
	41: {Slot: 1, Fsel: FselAlt0},
	45: {Slot: 1, Fsel: FselAlt0},
}

// PWMPinInfo reports the PWM routing of a GPIO, if it has one.
func PWMPinInfo(gpio int) (PWMPin, bool) {
	p, ok := pwmPins[gpio]
	return p, ok
}

// DMAChannelUsable rejects DMA channels outside 0-14 and the ones the
// firmware or kernel reserve for themselves (0, 1, 2, 3, 6, 7 feed the VPU
// and SD host on common firmware).
func DMAChannelUsable(ch int) bool {
	switch {
	case ch < 0 || ch > 14:
		return false
	case ch == 0 || ch == 1 || ch == 2 || ch == 3 || ch == 6 || ch == 7:
		return false
	}
	return true
}
