// Package frame lays encoded channel bitstreams out as the word sequence
// the PWM FIFO consumes.
//
// The BCM283x PWM serializer shifts each 32-bit FIFO word out MSB first.
// With both PWM channels enabled the FIFO is shared: even words feed slot
// 0, odd words slot 1, so a two-channel frame interleaves the streams word
// by word. A single-channel frame is dense.
package frame

import (
	"errors"
	"fmt"

	"github.com/coreman2200/funtimes-ws281x/internal/encoder"
)

// ErrOverlap reports two configured channels claiming the same physical
// PWM slot.
var ErrOverlap = errors.New("frame: two channels share a PWM slot")

// Slot is one PWM channel's encoded symbol stream.
type Slot struct {
	// Bits is the packed symbol stream from the encoder.
	Bits []byte
	// Invert selects the idle level used for padding and the latch gap.
	Invert bool
}

// CheckSlots validates that every channel landed on a distinct slot.
func CheckSlots(slots []int) error {
	seen := map[int]bool{}
	for _, s := range slots {
		if seen[s] {
			return fmt.Errorf("%w: slot %d", ErrOverlap, s)
		}
		seen[s] = true
	}
	return nil
}

func active(slots [2]*Slot) []*Slot {
	var out []*Slot
	for _, s := range slots {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// WordsPerSlot returns how many FIFO words each active slot contributes:
// the longest stream plus the latch gap, rounded up to whole words. Slots
// are padded to a common length so the interleave stays aligned.
func WordsPerSlot(slots [2]*Slot, resetBytes int) int {
	maxBytes := 0
	for _, s := range active(slots) {
		if n := len(s.Bits) + resetBytes; n > maxBytes {
			maxBytes = n
		}
	}
	return (maxBytes + 3) / 4
}

// Build packs the slot streams into dst, interleaving when both slots are
// active. Bytes past a slot's stream, including the whole latch gap, are
// the slot's idle level. dst is reused when it has capacity.
func Build(dst []uint32, slots [2]*Slot, resetBytes int) []uint32 {
	act := active(slots)
	if len(act) == 0 {
		return dst[:0]
	}
	wps := WordsPerSlot(slots, resetBytes)
	need := wps * len(act)
	if cap(dst) < need {
		dst = make([]uint32, need)
	}
	dst = dst[:need]
	for si, s := range act {
		idle := encoder.IdleByte(s.Invert)
		for w := 0; w < wps; w++ {
			var word uint32
			for b := 0; b < 4; b++ {
				v := idle
				if i := w*4 + b; i < len(s.Bits) {
					v = s.Bits[i]
				}
				word = word<<8 | uint32(v)
			}
			dst[w*len(act)+si] = word
		}
	}
	return dst
}
