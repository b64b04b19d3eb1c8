//go:build linux

package ws281x

import (
	"fmt"
	"os"
	"syscall"
	"time"
	"unsafe"

	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-ws281x/internal/encoder"
	"github.com/coreman2200/funtimes-ws281x/internal/frame"
	"github.com/coreman2200/funtimes-ws281x/internal/mbox"
	"github.com/coreman2200/funtimes-ws281x/internal/rpihw"
)

type transportState uint8

const (
	stateUninitialized transportState = iota
	stateReady
	stateTransmitting
)

// pwmTransport streams frames through the BCM283x PWM serializer paced by
// DMA. The frame buffer is double-buffered inside one mailbox-allocated
// uncached region: while the front half drains on the wire, the next frame
// is built into the back half, so an in-flight transmission is never
// overwritten.
type pwmTransport struct {
	cfg   TransportConfig
	model *rpihw.Model
	state transportState

	mem  *os.File
	maps [][]byte
	dma  *dmaRegs
	pwm  *pwmRegs
	gpio *gpioRegs
	cm   *cmRegs

	mbox      *mbox.Mailbox
	memHandle uint32
	busAddr   uint32
	region    []byte
	cb        *dmaCB
	halves    [2][]uint32
	back      int

	resetBytes int
	frameWords int
	frameTime  time.Duration
	started    time.Time

	slotBits [2][]byte
}

func newPWMTransport() Transport { return &pwmTransport{} }

func (t *pwmTransport) Init(cfg TransportConfig) error {
	if t.state != stateUninitialized {
		return fmt.Errorf("%w: transport already initialized", ErrInvalidConfiguration)
	}
	hz := uint32(cfg.Frequency / physic.Hertz)
	if hz == 0 {
		return fmt.Errorf("%w: frequency %s", ErrInvalidConfiguration, cfg.Frequency)
	}
	model, err := rpihw.Detect()
	if err != nil {
		return fmt.Errorf("ws281x: %w", err)
	}
	// The PWM clock runs at three clocks per data bit.
	divi := model.OscFreq / (hz * encoder.SymbolsPerBit)
	if divi < 2 {
		return fmt.Errorf("%w: frequency %s too high for the %s oscillator", ErrInvalidConfiguration, cfg.Frequency, model.Name)
	}

	// Frame geometry is fixed for the transport's lifetime.
	t.resetBytes = encoder.ResetBytes(hz, cfg.ResetTime)
	maxBytes := 0
	for _, ch := range cfg.Channels {
		if n := ch.Count * ch.Colors * encoder.SymbolsPerBit; n > maxBytes {
			maxBytes = n
		}
	}
	wps := (maxBytes + t.resetBytes + 3) / 4
	t.frameWords = wps * len(cfg.Channels)
	// One 32-bit word is 32 symbols; each slot drains wps words.
	t.frameTime = time.Duration(wps*32) * time.Second /
		(encoder.SymbolsPerBit * time.Duration(hz))

	if err := t.mapHardware(cfg, model); err != nil {
		t.cleanup()
		return err
	}
	if err := t.setupHardware(cfg, divi); err != nil {
		t.cleanup()
		return err
	}

	t.cfg = cfg
	t.model = model
	t.back = 0
	t.state = stateReady
	return nil
}

// mapHardware maps the register blocks and allocates the uncached DMA
// region through the firmware mailbox.
func (t *pwmTransport) mapHardware(cfg TransportConfig, model *rpihw.Model) error {
	var err error
	t.mem, err = os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return fmt.Errorf("ws281x: open /dev/mem: %w", err)
	}

	mapReg := func(offset uintptr, size int) (unsafe.Pointer, error) {
		buf, off, err := mapMem(t.mem, model.PeriphBase+offset, size)
		if err != nil {
			return nil, err
		}
		t.maps = append(t.maps, buf)
		return unsafe.Pointer(&buf[off]), nil
	}

	p, err := mapReg(gpioOffset, int(unsafe.Sizeof(gpioRegs{})))
	if err != nil {
		return err
	}
	t.gpio = (*gpioRegs)(p)
	if p, err = mapReg(pwmOffset, int(unsafe.Sizeof(pwmRegs{}))); err != nil {
		return err
	}
	t.pwm = (*pwmRegs)(p)
	if p, err = mapReg(cmPwmOffset, int(unsafe.Sizeof(cmRegs{}))); err != nil {
		return err
	}
	t.cm = (*cmRegs)(p)
	if p, err = mapReg(dmaOffset+dmaSpacing*uintptr(cfg.DMAChannel), int(unsafe.Sizeof(dmaRegs{}))); err != nil {
		return err
	}
	t.dma = (*dmaRegs)(p)

	// Uncached, physically contiguous region: control block + two frame
	// halves.
	page := syscall.Getpagesize()
	frameBytes := t.frameWords * 4
	size := cbBytes + 2*frameBytes
	if rem := size % page; rem != 0 {
		size += page - rem
	}
	if t.mbox, err = mbox.Open(); err != nil {
		return err
	}
	if t.memHandle, err = t.mbox.AllocMem(uint32(size), uint32(page), model.MemFlag); err != nil {
		return err
	}
	if t.busAddr, err = t.mbox.LockMem(t.memHandle); err != nil {
		return err
	}
	phys := rpihw.BusToPhys(uintptr(t.busAddr))
	t.region, err = syscall.Mmap(int(t.mem.Fd()), int64(phys), size,
		syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("ws281x: mmap DMA region %#08x: %w", phys, err)
	}
	for i := range t.region {
		t.region[i] = 0
	}
	t.cb = (*dmaCB)(unsafe.Pointer(&t.region[0]))
	for h := 0; h < 2; h++ {
		t.halves[h] = unsafe.Slice(
			(*uint32)(unsafe.Pointer(&t.region[cbBytes+h*frameBytes])), t.frameWords)
	}
	return nil
}

// setupHardware programs the clock, the PWM serializer, the pin muxes and
// the static parts of the control block.
func (t *pwmTransport) setupHardware(cfg TransportConfig, divi uint32) error {
	// Everything off before touching the clock.
	regWrite(&t.pwm.ctl, 0)
	regWrite(&t.dma.cs, dmaCsReset)
	time.Sleep(10 * time.Microsecond)

	regWrite(&t.cm.ctl, cmPasswd|cmCtlKill)
	if !waitReg(&t.cm.ctl, cmCtlBusy, false, 10*time.Millisecond) {
		return fmt.Errorf("ws281x: PWM clock refused to stop")
	}
	regWrite(&t.cm.div, cmPasswd|divi<<12)
	regWrite(&t.cm.ctl, cmPasswd|cmCtlSrcOsc)
	regWrite(&t.cm.ctl, cmPasswd|cmCtlSrcOsc|cmCtlEnab)
	if !waitReg(&t.cm.ctl, cmCtlBusy, true, 10*time.Millisecond) {
		return fmt.Errorf("ws281x: PWM clock refused to start")
	}

	regWrite(&t.pwm.rng1, 32)
	regWrite(&t.pwm.rng2, 32)
	regWrite(&t.pwm.dmac, pwmDmacConfig)
	ctl := uint32(pwmCtlClrf)
	for _, ch := range cfg.Channels {
		if ch.Slot == 0 {
			ctl |= pwmCtlMode1 | pwmCtlUsef1 | pwmCtlPwen1
			if ch.Invert {
				ctl |= pwmCtlSbit1
			}
		} else {
			ctl |= pwmCtlMode2 | pwmCtlUsef2 | pwmCtlPwen2
			if ch.Invert {
				ctl |= pwmCtlSbit2
			}
		}
	}
	regWrite(&t.pwm.ctl, ctl)

	for _, ch := range cfg.Channels {
		t.setPinFunction(ch.GPIOPin, ch.Fsel)
	}

	regWrite(&t.dma.cs, dmaCsInt|dmaCsEnd)
	t.cb.ti = dmaTiNoWideBursts | dmaTiWaitResp | dmaTiDestDreq | dmaTiPermapPWM | dmaTiSrcInc
	t.cb.destAd = pwmBusBase + fif1Offset
	t.cb.stride = 0
	t.cb.nextConBk = 0
	return nil
}

func (t *pwmTransport) setPinFunction(pin int, fsel uint32) {
	reg := pin / 10
	shift := uint(pin%10) * 3
	v := regRead(&t.gpio.fsel[reg])
	regWrite(&t.gpio.fsel[reg], v&^(0x7<<shift)|fsel<<shift)
}

func (t *pwmTransport) Render(f *Frame) error {
	if t.state == stateUninitialized {
		return ErrNotInitialized
	}
	if len(f.Channels) != len(t.cfg.Channels) {
		return fmt.Errorf("%w: frame has %d channels, transport %d", ErrInvalidConfiguration, len(f.Channels), len(t.cfg.Channels))
	}

	// Line-code into the back half while the front may still be
	// draining; pixel counts are fixed so the geometry never changes.
	var slots [2]*frame.Slot
	for i, ch := range t.cfg.Channels {
		bits := encoder.AppendBits(t.slotBits[ch.Slot][:0], f.Channels[i], ch.Invert)
		t.slotBits[ch.Slot] = bits
		slots[ch.Slot] = &frame.Slot{Bits: bits, Invert: ch.Invert}
	}
	back := t.back
	t.halves[back] = frame.Build(t.halves[back], slots, t.resetBytes)

	// Back-pressure: at most one transmission in flight.
	if err := t.Wait(); err != nil {
		return err
	}

	frameBytes := uint32(t.frameWords * 4)
	t.cb.sourceAd = t.busAddr + cbBytes + uint32(back)*frameBytes
	t.cb.txLen = frameBytes
	regWrite(&t.dma.cs, dmaCsInt|dmaCsEnd)
	regWrite(&t.dma.conblkAd, t.busAddr)
	regWrite(&t.dma.cs, dmaCsWaitWrites|dmaCsPanicPriority|dmaCsPriority|dmaCsActive)

	t.back = 1 - back
	t.started = time.Now()
	t.state = stateTransmitting
	return nil
}

// Wait blocks until the in-flight transmission drains. It is bounded:
// twice the frame time plus margin, after which the engine is force-reset
// and the render reported failed.
func (t *pwmTransport) Wait() error {
	if t.state != stateTransmitting {
		return nil
	}
	deadline := t.started.Add(2*t.frameTime + 20*time.Millisecond)
	for {
		cs := regRead(&t.dma.cs)
		if cs&dmaCsError != 0 {
			debug := regRead(&t.dma.debug)
			t.abort()
			return fmt.Errorf("%w: DMA error (cs=%#08x debug=%#08x)", ErrTransmitFailure, cs, debug)
		}
		if cs&dmaCsActive == 0 {
			t.state = stateReady
			return nil
		}
		if time.Now().After(deadline) {
			t.abort()
			return fmt.Errorf("%w: transmission stalled beyond %v", ErrTransmitFailure, 2*t.frameTime)
		}
		time.Sleep(10 * time.Microsecond)
	}
}

func (t *pwmTransport) abort() {
	regWrite(&t.dma.cs, dmaCsReset)
	t.state = stateReady
}

// Fini drains or aborts the last transmission, parks the hardware and
// frees everything. Safe to call repeatedly.
func (t *pwmTransport) Fini() error {
	if t.state == stateUninitialized {
		return nil
	}
	_ = t.Wait()
	if t.pwm != nil {
		regWrite(&t.pwm.ctl, 0)
	}
	if t.dma != nil {
		regWrite(&t.dma.cs, dmaCsReset)
	}
	if t.cm != nil {
		regWrite(&t.cm.ctl, cmPasswd|cmCtlKill)
	}
	if t.gpio != nil {
		// Park the data pins as inputs.
		for _, ch := range t.cfg.Channels {
			t.setPinFunction(ch.GPIOPin, 0)
		}
	}
	t.cleanup()
	t.state = stateUninitialized
	return nil
}

// cleanup releases mappings and mailbox memory in reverse acquisition
// order. Called from both Fini and failed Init paths.
func (t *pwmTransport) cleanup() {
	if t.region != nil {
		_ = syscall.Munmap(t.region)
		t.region = nil
		t.cb = nil
		t.halves[0], t.halves[1] = nil, nil
	}
	if t.mbox != nil {
		if t.memHandle != 0 {
			_ = t.mbox.UnlockMem(t.memHandle)
			_ = t.mbox.FreeMem(t.memHandle)
			t.memHandle = 0
		}
		_ = t.mbox.Close()
		t.mbox = nil
	}
	for _, m := range t.maps {
		_ = syscall.Munmap(m)
	}
	t.maps = nil
	t.dma, t.pwm, t.gpio, t.cm = nil, nil, nil, nil
	if t.mem != nil {
		_ = t.mem.Close()
		t.mem = nil
	}
}
