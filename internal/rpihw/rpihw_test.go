package rpihw

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func rangesBlob(cells ...uint32) []byte {
	b := make([]byte, 4*len(cells))
	for i, c := range cells {
		binary.BigEndian.PutUint32(b[i*4:], c)
	}
	return b
}

func TestFromRanges(t *testing.T) {
	cases := []struct {
		name  string
		blob  []byte
		model string
	}{
		{"pi1", rangesBlob(0x7e000000, 0x20000000, 0x02000000), "bcm2835"},
		{"pi3", rangesBlob(0x7e000000, 0x3f000000, 0x01000000), "bcm2836/7"},
		// BCM2711 uses a 64-bit parent address, pushing the base a cell out.
		{"pi4", rangesBlob(0x7e000000, 0x00000000, 0xfe000000, 0x01800000), "bcm2711"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := fromRanges(tc.blob)
			if err != nil {
				t.Fatal(err)
			}
			if m.Name != tc.model {
				t.Fatalf("got %s, want %s", m.Name, tc.model)
			}
		})
	}
}

func TestFromRangesRejectsGarbage(t *testing.T) {
	if _, err := fromRanges([]byte{1, 2, 3}); err == nil {
		t.Fatal("short blob accepted")
	}
	if _, err := fromRanges(rangesBlob(0x7e000000, 0x12345678, 0)); err == nil {
		t.Fatal("unknown base accepted")
	}
}

func TestDetectFromCPUInfo(t *testing.T) {
	m, err := DetectFromCPUInfo("processor\t: 0\nHardware\t: BCM2711\nRevision\t: c03111\n")
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "bcm2711" {
		t.Fatalf("got %s, want bcm2711", m.Name)
	}
	if _, err := DetectFromCPUInfo("Hardware\t: Qualcomm\n"); err == nil {
		t.Fatal("foreign SoC accepted")
	}
}

func TestDetectFallsBackToCPUInfo(t *testing.T) {
	dir := t.TempDir()
	rangesFile := filepath.Join(dir, "ranges")
	infoFile := filepath.Join(dir, "cpuinfo")
	// Garbage ranges, usable cpuinfo.
	if err := os.WriteFile(rangesFile, rangesBlob(0x7e000000, 0x12345678, 0), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(infoFile, []byte("Hardware\t: BCM2835\n"), 0644); err != nil {
		t.Fatal(err)
	}

	oldRanges, oldInfo := dtRanges, cpuinfoPath
	dtRanges, cpuinfoPath = rangesFile, infoFile
	defer func() { dtRanges, cpuinfoPath = oldRanges, oldInfo }()

	m, err := Detect()
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "bcm2835" {
		t.Fatalf("got %s, want bcm2835", m.Name)
	}

	// Missing ranges file takes the same path.
	dtRanges = filepath.Join(dir, "nope")
	m, err = Detect()
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "bcm2835" {
		t.Fatalf("got %s, want bcm2835", m.Name)
	}

	// Neither source usable.
	cpuinfoPath = filepath.Join(dir, "nope2")
	if _, err := Detect(); err == nil {
		t.Fatal("detect succeeded with no sources")
	}
}

func TestBusToPhys(t *testing.T) {
	if got := BusToPhys(0xde000000); got != 0x1e000000 {
		t.Fatalf("BusToPhys = %#x, want 0x1e000000", got)
	}
}

func TestPWMPinInfo(t *testing.T) {
	cases := []struct {
		gpio int
		slot int
		fsel uint32
		ok   bool
	}{
		{18, 0, FselAlt5, true},
		{13, 1, FselAlt0, true},
		{12, 0, FselAlt0, true},
		{19, 1, FselAlt5, true},
		{17, 0, 0, false},
	}
	for _, tc := range cases {
		info, ok := PWMPinInfo(tc.gpio)
		if ok != tc.ok {
			t.Fatalf("gpio %d: ok = %v, want %v", tc.gpio, ok, tc.ok)
		}
		if !ok {
			continue
		}
		if info.Slot != tc.slot || info.Fsel != tc.fsel {
			t.Fatalf("gpio %d: slot %d fsel %v, want slot %d fsel %v",
				tc.gpio, info.Slot, info.Fsel, tc.slot, tc.fsel)
		}
	}
}

func TestDMAChannelUsable(t *testing.T) {
	for _, ch := range []int{0, 1, 2, 3, 6, 7, -1, 15} {
		if DMAChannelUsable(ch) {
			t.Fatalf("channel %d accepted", ch)
		}
	}
	for _, ch := range []int{5, 10, 13, 14} {
		if !DMAChannelUsable(ch) {
			t.Fatalf("channel %d rejected", ch)
		}
	}
}
