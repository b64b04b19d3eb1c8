// Package rpihw identifies the Raspberry Pi peripheral address layout and
// knows which GPIO pins can carry a hardware PWM output.
package rpihw

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"
)

// Model describes the address layout of one SoC generation.
type Model struct {
	Name string

	// PeriphBase is the physical (CPU) address of the peripheral window,
	// used when mapping /dev/mem.
	PeriphBase uintptr

	// VideocoreBase is the bus-address alias under which the videocore
	// sees system RAM; mailbox-allocated buffers come back as bus
	// addresses in this window.
	VideocoreBase uintptr

	// OscFreq is the oscillator feeding the PWM clock manager, in Hz.
	OscFreq uint32

	// MemFlag is the mailbox allocation flag for coherent DMA memory on
	// this generation.
	MemFlag uint32
}

var models = []Model{
	{Name: "bcm2835", PeriphBase: 0x20000000, VideocoreBase: 0x40000000, OscFreq: 19200000, MemFlag: 0x0c},
	{Name: "bcm2836/7", PeriphBase: 0x3f000000, VideocoreBase: 0xc0000000, OscFreq: 19200000, MemFlag: 0x04},
	{Name: "bcm2711", PeriphBase: 0xfe000000, VideocoreBase: 0xc0000000, OscFreq: 54000000, MemFlag: 0x04},
}

// Overridable for tests.
var (
	dtRanges    = "/proc/device-tree/soc/ranges"
	cpuinfoPath = "/proc/cpuinfo"
)

// Detect reads the device tree to find the peripheral base and matches it
// against the known SoC generations. Kernels without a usable soc/ranges
// fall back to the Hardware line of /proc/cpuinfo.
func Detect() (*Model, error) {
	if raw, err := os.ReadFile(dtRanges); err == nil {
		if m, err := fromRanges(raw); err == nil {
			return m, nil
		}
	}
	info, err := os.ReadFile(cpuinfoPath)
	if err != nil {
		return nil, fmt.Errorf("rpihw: no usable %s and reading %s: %w", dtRanges, cpuinfoPath, err)
	}
	return DetectFromCPUInfo(string(info))
}

// fromRanges decodes the soc/ranges property. The peripheral base is the
// second cell; on BCM2711 the parent address is 64-bit so it moves one cell
// further out.
func fromRanges(raw []byte) (*Model, error) {
	if len(raw) < 12 {
		return nil, fmt.Errorf("rpihw: short soc/ranges (%d bytes)", len(raw))
	}
	base := uintptr(binary.BigEndian.Uint32(raw[4:8]))
	if base == 0 && len(raw) >= 16 {
		base = uintptr(binary.BigEndian.Uint32(raw[8:12]))
	}
	for i := range models {
		if models[i].PeriphBase == base {
			return &models[i], nil
		}
	}
	return nil, fmt.Errorf("rpihw: unknown peripheral base %#08x", base)
}

// DetectFromCPUInfo is the fallback for kernels without a usable
// soc/ranges: it keys off the "Hardware" line of /proc/cpuinfo content.
func DetectFromCPUInfo(cpuinfo string) (*Model, error) {
	for _, line := range strings.Split(cpuinfo, "\n") {
		if !strings.HasPrefix(line, "Hardware") {
			continue
		}
		switch {
		case strings.Contains(line, "BCM2711"):
			return &models[2], nil
		case strings.Contains(line, "BCM2709"), strings.Contains(line, "BCM2710"),
			strings.Contains(line, "BCM2836"), strings.Contains(line, "BCM2837"):
			return &models[1], nil
		case strings.Contains(line, "BCM2708"), strings.Contains(line, "BCM2835"):
			return &models[0], nil
		}
	}
	return nil, fmt.Errorf("rpihw: no known SoC in cpuinfo")
}

// BusToPhys strips the videocore alias bits off a mailbox bus address.
func BusToPhys(bus uintptr) uintptr { return bus &^ 0xc0000000 }
