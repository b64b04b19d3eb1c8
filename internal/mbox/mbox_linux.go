//go:build linux

package mbox

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"
)

// Property interface tags, per the firmware wiki.
const (
	tagAllocMem  = 0x3000c
	tagLockMem   = 0x3000d
	tagUnlockMem = 0x3000e
	tagFreeMem   = 0x3000f
)

const (
	respSuccess = 0x80000000
	respError   = 0x80000001
)

// _IOWR(100, 0, char*), sized for the platform pointer width.
var mboxProperty = uintptr(3)<<30 |
	uintptr(unsafe.Sizeof(uintptr(0)))<<16 |
	100<<8 | 0

// Mailbox is an open handle to /dev/vcio.
type Mailbox struct {
	f *os.File
}

// Open opens the firmware mailbox device.
func Open() (*Mailbox, error) {
	f, err := os.OpenFile("/dev/vcio", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("mbox: open /dev/vcio: %w", err)
	}
	return &Mailbox{f: f}, nil
}

// Close releases the device handle.
func (m *Mailbox) Close() error {
	if m.f == nil {
		return nil
	}
	err := m.f.Close()
	m.f = nil
	return err
}

// property runs a single-tag request and returns the first response value.
func (m *Mailbox) property(tag uint32, args ...uint32) (uint32, error) {
	if m.f == nil {
		return 0, fmt.Errorf("mbox: closed")
	}
	var msg [32]uint32
	msg[1] = 0 // process request
	msg[2] = tag
	msg[3] = uint32(len(args)) * 4 // value buffer size
	msg[4] = uint32(len(args)) * 4 // request: length of value data
	copy(msg[5:], args)
	end := 5 + len(args)
	msg[end] = 0 // end tag
	msg[0] = uint32((end + 1) * 4)

	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, m.f.Fd(), mboxProperty, uintptr(unsafe.Pointer(&msg[0])))
	if errno != 0 {
		return 0, fmt.Errorf("mbox: property ioctl: %v", errno)
	}
	if msg[1] != respSuccess {
		return 0, fmt.Errorf("mbox: firmware rejected tag %#x (status %#x)", tag, msg[1])
	}
	return msg[5], nil
}

// AllocMem reserves size bytes of GPU memory with the given alignment and
// allocation flags, returning an opaque handle.
func (m *Mailbox) AllocMem(size, align, flags uint32) (uint32, error) {
	h, err := m.property(tagAllocMem, size, align, flags)
	if err != nil {
		return 0, err
	}
	if h == 0 {
		return 0, fmt.Errorf("mbox: alloc of %d bytes failed", size)
	}
	return h, nil
}

// LockMem pins an allocation and returns its bus address.
func (m *Mailbox) LockMem(handle uint32) (uint32, error) {
	bus, err := m.property(tagLockMem, handle)
	if err != nil {
		return 0, err
	}
	if bus == 0 {
		return 0, fmt.Errorf("mbox: lock of handle %#x failed", handle)
	}
	return bus, nil
}

// UnlockMem unpins an allocation.
func (m *Mailbox) UnlockMem(handle uint32) error {
	_, err := m.property(tagUnlockMem, handle)
	return err
}

// FreeMem releases an allocation.
func (m *Mailbox) FreeMem(handle uint32) error {
	_, err := m.property(tagFreeMem, handle)
	return err
}
