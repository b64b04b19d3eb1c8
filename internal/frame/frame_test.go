package frame

import (
	"errors"
	"testing"
)

func TestCheckSlots(t *testing.T) {
	if err := CheckSlots([]int{0, 1}); err != nil {
		t.Fatalf("distinct slots rejected: %v", err)
	}
	err := CheckSlots([]int{1, 1})
	if !errors.Is(err, ErrOverlap) {
		t.Fatalf("duplicate slots gave %v, want ErrOverlap", err)
	}
}

func TestBuildSingleSlot(t *testing.T) {
	slots := [2]*Slot{{Bits: []byte{0xaa, 0xbb}}, nil}
	got := Build(nil, slots, 2)
	// 2 data bytes + 2 gap bytes fit one word, gap is idle low.
	want := []uint32{0xaabb0000}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("Build = %08x, want %08x", got, want)
	}
}

func TestBuildInterleavesTwoSlots(t *testing.T) {
	slots := [2]*Slot{
		{Bits: []byte{0x11, 0x22, 0x33, 0x44, 0x55}},
		{Bits: []byte{0xaa}},
	}
	got := Build(nil, slots, 0)
	// Longest stream is 5 bytes, so 2 words per slot. Even words feed
	// slot 0, odd words slot 1, and the short stream pads with idle.
	want := []uint32{0x11223344, 0xaa000000, 0x55000000, 0x00000000}
	if len(got) != len(want) {
		t.Fatalf("Build returned %d words, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("word %d = %08x, want %08x", i, got[i], want[i])
		}
	}
}

func TestBuildInvertedIdle(t *testing.T) {
	slots := [2]*Slot{{Bits: []byte{0x00}, Invert: true}, nil}
	got := Build(nil, slots, 1)
	// Padding and the gap hold the line high on an inverted channel.
	if got[0] != 0x00ffffff {
		t.Fatalf("inverted idle word = %08x, want 00ffffff", got[0])
	}
}

func TestBuildReusesBuffer(t *testing.T) {
	dst := make([]uint32, 8)
	slots := [2]*Slot{{Bits: []byte{0x01}}, nil}
	got := Build(dst, slots, 0)
	if &got[0] != &dst[0] {
		t.Fatal("Build reallocated despite sufficient capacity")
	}
	if len(got) != 1 {
		t.Fatalf("Build length %d, want 1", len(got))
	}
}

func TestWordsPerSlotCoversGap(t *testing.T) {
	slots := [2]*Slot{{Bits: make([]byte, 9)}, nil}
	// 9 data bytes + 90 gap bytes = 99 bytes = 25 words.
	if got := WordsPerSlot(slots, 90); got != 25 {
		t.Fatalf("WordsPerSlot = %d, want 25", got)
	}
}
