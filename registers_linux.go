//go:build linux

package ws281x

import (
	"fmt"
	"os"
	"sync/atomic"
	"syscall"
	"time"
)

// Offsets of the peripherals inside the physical peripheral window.
const (
	gpioOffset  = uintptr(0x00200000)
	pwmOffset   = uintptr(0x0020c000)
	cmPwmOffset = uintptr(0x001010a0)
	dmaOffset   = uintptr(0x00007000)
	dmaSpacing  = uintptr(0x100)
)

// pwmBusBase is the PWM block as the DMA engine addresses it; the
// peripheral window is always aliased at 0x7e000000 on the bus.
const pwmBusBase = 0x7e20c000

// fif1Offset is the PWM FIFO register, the DMA destination.
const fif1Offset = 0x18

// dmaRegs is one DMA channel's register block.
type dmaRegs struct {
	cs        uint32
	conblkAd  uint32
	ti        uint32
	sourceAd  uint32
	destAd    uint32
	txLen     uint32
	stride    uint32
	nextConBk uint32
	debug     uint32
}

// pwmRegs is the PWM controller register block.
type pwmRegs struct {
	ctl  uint32
	sta  uint32
	dmac uint32
	_    uint32
	rng1 uint32
	dat1 uint32
	fif1 uint32
	_    uint32
	rng2 uint32
	dat2 uint32
}

// gpioRegs covers the function select and set/clear registers; that is all
// the driver touches.
type gpioRegs struct {
	fsel [6]uint32
	_    uint32
	set  [2]uint32
	_    uint32
	clr  [2]uint32
}

// cmRegs is the PWM clock manager pair.
type cmRegs struct {
	ctl uint32
	div uint32
}

// dmaCB is a DMA control block. It lives at the start of the uncached
// region and the engine requires 32-byte alignment, which the page-aligned
// allocation provides.
type dmaCB struct {
	ti        uint32
	sourceAd  uint32
	destAd    uint32
	txLen     uint32
	stride    uint32
	nextConBk uint32
	_         [2]uint32
}

const cbBytes = 32

// DMA CS bits.
const (
	dmaCsActive     = 1 << 0
	dmaCsEnd        = 1 << 1
	dmaCsInt        = 1 << 2
	dmaCsError      = 1 << 8
	dmaCsWaitWrites = 1 << 28
	dmaCsReset      = 1 << 31

	dmaCsPriority      = 8 << 16
	dmaCsPanicPriority = 8 << 20
)

// DMA TI bits.
const (
	dmaTiWaitResp     = 1 << 3
	dmaTiDestDreq     = 1 << 6
	dmaTiSrcInc       = 1 << 8
	dmaTiPermapPWM    = 5 << 16
	dmaTiNoWideBursts = 1 << 26
)

// PWM CTL bits.
const (
	pwmCtlPwen1 = 1 << 0
	pwmCtlMode1 = 1 << 1
	pwmCtlRptl1 = 1 << 2
	pwmCtlSbit1 = 1 << 3
	pwmCtlPola1 = 1 << 4
	pwmCtlUsef1 = 1 << 5
	pwmCtlClrf  = 1 << 6
	pwmCtlPwen2 = 1 << 8
	pwmCtlMode2 = 1 << 9
	pwmCtlRptl2 = 1 << 10
	pwmCtlSbit2 = 1 << 11
	pwmCtlPola2 = 1 << 12
	pwmCtlUsef2 = 1 << 13
)

// PWM DMAC: enable with panic threshold 7, DREQ threshold 3.
const pwmDmacConfig = 1<<31 | 7<<8 | 3

// Clock manager bits; every write needs the password in the top byte.
const (
	cmPasswd    = 0x5a << 24
	cmCtlSrcOsc = 1 << 0
	cmCtlEnab   = 1 << 4
	cmCtlKill   = 1 << 5
	cmCtlBusy   = 1 << 7
)

// Register access goes through atomics so the polling loops read fresh
// device state rather than whatever the compiler decided to cache.
func regRead(r *uint32) uint32     { return atomic.LoadUint32(r) }
func regWrite(r *uint32, v uint32) { atomic.StoreUint32(r, v) }

// waitReg polls until mask bits match the wanted state or the timeout
// expires.
func waitReg(r *uint32, mask uint32, set bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if (regRead(r)&mask != 0) == set {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(10 * time.Microsecond)
	}
}

// mapMem maps a register block out of /dev/mem. phys need not be page
// aligned; the returned offset locates it inside the mapping.
func mapMem(f *os.File, phys uintptr, size int) ([]byte, uintptr, error) {
	page := uintptr(syscall.Getpagesize())
	base := phys &^ (page - 1)
	off := phys - base
	length := int(off) + size
	if rem := length % int(page); rem != 0 {
		length += int(page) - rem
	}
	buf, err := syscall.Mmap(int(f.Fd()), int64(base), length,
		syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		return nil, 0, fmt.Errorf("ws281x: mmap %#08x: %w", base, err)
	}
	return buf, off, nil
}
