package accel

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/mklimuk/lsm303dlx"
)

// LSM303DLx accelerometer I2C address (7-bit, SA0 low)
const defaultAddress = 0x18

// the device needs time to settle after a power mode change before further
// register writes; datasheet figure, overridable with WithSettleDelay
const defaultSettleDelay = 6 * time.Millisecond

const defaultNominalRange = 2048

var ErrDataNotReady = fmt.Errorf("lsm303dlx: accelerometer data not ready")
var ErrNotImplemented = fmt.Errorf("lsm303dlx: configuration key not implemented")
var ErrInvalidParameter = fmt.Errorf("lsm303dlx: invalid parameter")

// ConfigKey identifies one configurable quantity of one power state.
type ConfigKey int

const (
	ODRSuspend ConfigKey = iota
	ODRResume
	FSRSuspend
	FSRResume
	MotThs
	NMotThs
	MotDur
	NMotDur
	IRQSuspend
	IRQResume
)

var configKeyNames = map[ConfigKey]string{
	ODRSuspend: "odr-suspend",
	ODRResume:  "odr-resume",
	FSRSuspend: "fsr-suspend",
	FSRResume:  "fsr-resume",
	MotThs:     "mot-ths",
	NMotThs:    "nmot-ths",
	MotDur:     "mot-dur",
	NMotDur:    "nmot-dur",
	IRQSuspend: "irq-suspend",
	IRQResume:  "irq-resume",
}

func (k ConfigKey) String() string {
	if name, ok := configKeyNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseConfigKey resolves the textual form used by the CLI.
func ParseConfigKey(s string) (ConfigKey, error) {
	for key, name := range configKeyNames {
		if name == s {
			return key, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown configuration key %q", ErrNotImplemented, s)
}

// LSM303DLx owns the dual suspend/resume configuration of one ST LSM303DLH or
// LSM303DLM accelerometer and programs it over a register bus. One
// configuration or lifecycle operation is in flight at a time; the handle
// serializes callers itself.
type LSM303DLx struct {
	mx        sync.Mutex
	transport lsm303dlx.RegisterBus
	address   byte
	settle    time.Duration
	nominal   int64

	suspend Config
	resume  Config
}

type Option func(*LSM303DLx)

// WithAddress overrides the device bus address (0x19 with SA0 high).
func WithAddress(address byte) Option {
	return func(d *LSM303DLx) { d.address = address }
}

// WithSettleDelay overrides the pause after the resume-path power mode write.
// Check the datasheet before lowering it.
func WithSettleDelay(delay time.Duration) Option {
	return func(d *LSM303DLx) { d.settle = delay }
}

// WithNominalRange sets the full scale range in mg both profiles are seeded
// with at attach time.
func WithNominalRange(mg int64) Option {
	return func(d *LSM303DLx) { d.nominal = mg }
}

// New attaches a driver handle to the device behind trans. Both power state
// profiles are seeded with factory defaults; the device itself is not touched
// until a configuration is applied or a power transition runs.
func New(trans lsm303dlx.RegisterBus, opts ...Option) (*LSM303DLx, error) {
	if trans == nil {
		return nil, fmt.Errorf("%w: nil transport", ErrInvalidParameter)
	}
	d := &LSM303DLx{
		transport: trans,
		address:   defaultAddress,
		settle:    defaultSettleDelay,
		nominal:   defaultNominalRange,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seedDefaults()
	return d, nil
}

func (d *LSM303DLx) seedDefaults() {
	d.resume.ctrlReg1 = 0x37
	d.suspend.ctrlReg1 = 0x47
	d.resume.motInt1Cfg = 0x95
	d.suspend.motInt1Cfg = 0x2A

	d.suspend.setODR(0)
	d.resume.setODR(200000)
	d.suspend.setFSR(d.nominal)
	d.resume.setFSR(d.nominal)
	d.suspend.setThs(80)
	d.resume.setThs(40)
	d.suspend.setDur(1000)
	d.resume.setDur(2540)
	d.suspend.setIRQ(IRQNone)
	d.resume.setIRQ(IRQNone)
}

// Close detaches from the device and releases the transport. The device keeps
// whatever configuration was last programmed.
func (d *LSM303DLx) Close(ctx context.Context) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.transport.Release(ctx)
}

// Address returns the device bus address the handle is attached to.
func (d *LSM303DLx) Address() byte { return d.address }

// Config returns a snapshot of the given power state's configuration.
func (d *LSM303DLx) Config(state PowerState) Config {
	d.mx.Lock()
	defer d.mx.Unlock()
	return *d.config(state)
}

func (d *LSM303DLx) config(state PowerState) *Config {
	if state == Suspend {
		return &d.suspend
	}
	return &d.resume
}

// SetConfig routes a configuration request to the matching converter. With
// apply set the result is also pushed to the device immediately; otherwise it
// is staged for the next power transition.
func (d *LSM303DLx) SetConfig(ctx context.Context, key ConfigKey, apply bool, value int64) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	switch key {
	case ODRSuspend:
		return d.setODR(ctx, &d.suspend, apply, value)
	case ODRResume:
		return d.setODR(ctx, &d.resume, apply, value)
	case FSRSuspend:
		return d.setFSR(ctx, &d.suspend, apply, value)
	case FSRResume:
		return d.setFSR(ctx, &d.resume, apply, value)
	case MotThs:
		return d.setThs(ctx, &d.suspend, apply, value)
	case NMotThs:
		return d.setThs(ctx, &d.resume, apply, value)
	case MotDur:
		return d.setDur(ctx, &d.suspend, apply, value)
	case NMotDur:
		return d.setDur(ctx, &d.resume, apply, value)
	case IRQSuspend:
		return d.setIRQ(ctx, &d.suspend, apply, IRQType(value))
	case IRQResume:
		return d.setIRQ(ctx, &d.resume, apply, IRQType(value))
	default:
		return ErrNotImplemented
	}
}

// GetConfig mirrors the key space of SetConfig for read-only access.
func (d *LSM303DLx) GetConfig(key ConfigKey) (int64, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	switch key {
	case ODRSuspend:
		return d.suspend.odr, nil
	case ODRResume:
		return d.resume.odr, nil
	case FSRSuspend:
		return d.suspend.fsr, nil
	case FSRResume:
		return d.resume.fsr, nil
	case MotThs:
		return d.suspend.ths, nil
	case NMotThs:
		return d.resume.ths, nil
	case MotDur:
		return d.suspend.dur, nil
	case NMotDur:
		return d.resume.dur, nil
	case IRQSuspend:
		return int64(d.suspend.irqType), nil
	case IRQResume:
		return int64(d.resume.irqType), nil
	default:
		return 0, ErrNotImplemented
	}
}

func (d *LSM303DLx) setODR(ctx context.Context, c *Config, apply bool, odr int64) error {
	c.setODR(odr)
	if !apply {
		return nil
	}
	// the duration encoding moved with the rate
	if err := d.write(ctx, regInt1Duration, c.regDur); err != nil {
		return err
	}
	return d.write(ctx, regCtrl1, c.ctrlReg1)
}

func (d *LSM303DLx) setFSR(ctx context.Context, c *Config, apply bool, fsr int64) error {
	reg := c.setFSR(fsr)
	if !apply {
		return nil
	}
	// the threshold encoding moved with the range
	if err := d.write(ctx, regInt1Ths, c.regThs); err != nil {
		return err
	}
	return d.write(ctx, regCtrl4, reg)
}

func (d *LSM303DLx) setThs(ctx context.Context, c *Config, apply bool, ths int64) error {
	c.setThs(ths)
	if !apply {
		return nil
	}
	return d.write(ctx, regInt1Ths, c.regThs)
}

func (d *LSM303DLx) setDur(ctx context.Context, c *Config, apply bool, dur int64) error {
	c.setDur(dur)
	if !apply {
		return nil
	}
	return d.write(ctx, regInt1Duration, c.regDur)
}

func (d *LSM303DLx) setIRQ(ctx context.Context, c *Config, apply bool, irq IRQType) error {
	c.setIRQ(irq)
	if !apply {
		return nil
	}
	ctrl3, int1cfg := c.irqBytes()
	if err := d.write(ctx, regCtrl3, ctrl3); err != nil {
		return err
	}
	return d.write(ctx, regInt1Cfg, int1cfg)
}

// Suspend programs the device with the stored suspend profile. The sequence
// is best-effort: every register is written even if an earlier write failed,
// and only the status of the closing diagnostic read is reported. A partially
// configured idle state costs some power but is not unsafe.
func (d *LSM303DLx) Suspend(ctx context.Context) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	for _, step := range d.suspend.programSequence() {
		_ = d.write(ctx, step.reg, step.val)
	}
	return d.clearHPFilter(ctx)
}

// Resume programs the device with the stored resume profile. Unlike Suspend
// the sequence is fail-fast: entering the active state with a partial
// configuration is unsafe, so the first failing write aborts the transition
// and is reported together with the register it targeted.
func (d *LSM303DLx) Resume(ctx context.Context) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	for _, step := range d.resume.programSequence() {
		if err := d.write(ctx, step.reg, step.val); err != nil {
			return fmt.Errorf("write %s: %w", regName(step.reg), err)
		}
		if step.reg == regCtrl1 {
			time.Sleep(d.settle)
		}
	}
	if err := d.clearHPFilter(ctx); err != nil {
		return fmt.Errorf("read %s: %w", regName(regHPFilterReset), err)
	}
	return nil
}

// Apply pushes the given power state's profile to the device.
func (d *LSM303DLx) Apply(ctx context.Context, state PowerState) error {
	if state == Suspend {
		return d.Suspend(ctx)
	}
	return d.Resume(ctx)
}

// clearHPFilter reads the dummy register resetting the latched high-pass
// filter state, closing every transition sequence.
func (d *LSM303DLx) clearHPFilter(ctx context.Context) error {
	var scratch [1]byte
	return d.read(ctx, regHPFilterReset, scratch[:])
}

// ReadSample returns the raw 6-byte acceleration sample. The status register
// is checked first; when no fresh data is available ErrDataNotReady is
// returned and the output registers are left untouched.
func (d *LSM303DLx) ReadSample(ctx context.Context) ([]byte, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	var status [1]byte
	if err := d.read(ctx, regStatus, status[:]); err != nil {
		return nil, fmt.Errorf("read %s: %w", regName(regStatus), err)
	}
	if status[0]&statusReadyMask == 0 {
		return nil, ErrDataNotReady
	}
	data := make([]byte, sampleLen)
	if err := d.read(ctx, regOutXL|burstReadFlag, data); err != nil {
		return nil, fmt.Errorf("burst read sample registers: %w", err)
	}
	return data, nil
}

// DecodeSample splits a raw sample into per-axis counts, big-endian per axis
// pair. Interpretation beyond that is up to the caller.
func DecodeSample(data []byte) (x, y, z int16) {
	x = int16(binary.BigEndian.Uint16(data[0:2]))
	y = int16(binary.BigEndian.Uint16(data[2:4]))
	z = int16(binary.BigEndian.Uint16(data[4:6]))
	return x, y, z
}

func (d *LSM303DLx) write(ctx context.Context, reg, val byte) error {
	return d.transport.WriteRegister(ctx, d.address, reg, val)
}

func (d *LSM303DLx) read(ctx context.Context, reg byte, buf []byte) error {
	return d.transport.ReadRegisters(ctx, d.address, reg, buf)
}
