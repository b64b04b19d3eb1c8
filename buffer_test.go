package ws281x

import (
	"errors"
	"testing"
)

func TestBufferBounds(t *testing.T) {
	b := newBuffer(4)
	if b.Len() != 4 {
		t.Fatalf("Len = %d, want 4", b.Len())
	}
	if err := b.Set(4, 1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("Set past end gave %v", err)
	}
	if err := b.Set(-1, 1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("Set before start gave %v", err)
	}
	if _, err := b.At(4); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("At past end gave %v", err)
	}
}

func TestBufferSetAndFill(t *testing.T) {
	b := newBuffer(3)
	if err := b.SetRGB(1, 0x11, 0x22, 0x33, 0x44); err != nil {
		t.Fatal(err)
	}
	p, err := b.At(1)
	if err != nil {
		t.Fatal(err)
	}
	if p != ColorRGBW(0x11, 0x22, 0x33, 0x44) {
		t.Fatalf("At(1) = %08x", uint32(p))
	}
	b.Fill(Color(1, 2, 3))
	for i, v := range b.Pixels() {
		if v != Color(1, 2, 3) {
			t.Fatalf("pixel %d = %08x after Fill", i, uint32(v))
		}
	}
}

func TestBufferSetRange(t *testing.T) {
	b := newBuffer(5)
	src := []Pixel{1, 2, 3}
	if err := b.SetRange(1, src); err != nil {
		t.Fatal(err)
	}
	want := []Pixel{0, 1, 2, 3, 0}
	for i, v := range b.Pixels() {
		if v != want[i] {
			t.Fatalf("pixel %d = %d, want %d", i, v, want[i])
		}
	}
	if err := b.SetRange(3, src); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("overlong SetRange gave %v", err)
	}
}

func TestBufferSliceIsAView(t *testing.T) {
	b := newBuffer(10)
	v, err := b.Slice(2, 5)
	if err != nil {
		t.Fatal(err)
	}
	if v.Len() != 3 {
		t.Fatalf("view Len = %d, want 3", v.Len())
	}
	if err := v.Set(0, Color(9, 9, 9)); err != nil {
		t.Fatal(err)
	}
	p, _ := b.At(2)
	if p != Color(9, 9, 9) {
		t.Fatal("write through view not visible in parent")
	}
	// Views of views land at the right offset too.
	vv, err := v.Slice(1, 3)
	if err != nil {
		t.Fatal(err)
	}
	_ = vv.Set(1, 7)
	if p, _ := b.At(4); p != 7 {
		t.Fatal("nested view write landed at the wrong pixel")
	}
	if _, err := b.Slice(5, 2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("reversed Slice gave %v", err)
	}
	if _, err := b.Slice(0, 11); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("overlong Slice gave %v", err)
	}
}
