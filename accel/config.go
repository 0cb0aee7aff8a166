package accel

// PowerState selects one of the two persistent configuration profiles the
// device keeps: the low-power idle profile and the active one.
type PowerState int

const (
	Suspend PowerState = iota
	Resume
)

func (s PowerState) String() string {
	switch s {
	case Suspend:
		return "suspend"
	case Resume:
		return "resume"
	default:
		return "unknown"
	}
}

// IRQType selects what, if anything, drives the INT1 line.
type IRQType int64

const (
	IRQNone IRQType = iota
	IRQMotion
	IRQDataReady
)

func (t IRQType) String() string {
	switch t {
	case IRQMotion:
		return "motion"
	case IRQDataReady:
		return "data_ready"
	default:
		return "none"
	}
}

// Config holds one power state's settings in physical units together with the
// register encodings derived from them. The register fields are never set
// directly; every mutation goes through a setter which keeps both sides
// consistent.
type Config struct {
	odr int64 // output data rate, mHz; 0 powers the device down
	fsr int64 // full scale range, mg
	ths int64 // motion/no-motion threshold, mg
	dur int64 // motion/no-motion duration, ms; stores the raw request

	regThs     byte
	regDur     byte
	ctrlReg1   byte
	irqType    IRQType
	motInt1Cfg byte // fixed INT1_CFG byte used in motion mode, set once at attach
}

// ODR returns the configured output data rate in mHz.
func (c *Config) ODR() int64 { return c.odr }

// FSR returns the configured full scale range in mg.
func (c *Config) FSR() int64 { return c.fsr }

// Ths returns the configured motion threshold in mg.
func (c *Config) Ths() int64 { return c.ths }

// Dur returns the requested motion duration in ms.
func (c *Config) Dur() int64 { return c.dur }

// IRQ returns the configured interrupt mode.
func (c *Config) IRQ() IRQType { return c.irqType }

// setODR picks the supported rate for the requested one in mHz and rebuilds
// the CTRL_REG1 power/rate field, preserving the low axis-enable bits. The
// duration encoding scales with the rate, so it is refreshed as well.
func (c *Config) setODR(odr int64) {
	var bits byte
	switch {
	// normal power tiers
	case odr > 400000:
		c.odr = 1000000
		bits = pwrModeNormal | 0x18
	case odr > 100000:
		c.odr = 400000
		bits = pwrModeNormal | 0x10
	case odr > 50000:
		c.odr = 100000
		bits = pwrModeNormal | 0x08
	case odr > 10000:
		c.odr = 50000
		bits = pwrModeNormal | 0x00
	// low power tiers
	case odr > 5000:
		c.odr = 10000
		bits = 0xC0
	case odr > 2000:
		c.odr = 5000
		bits = 0xA0
	case odr > 1000:
		c.odr = 2000
		bits = 0x80
	case odr > 500:
		c.odr = 1000
		bits = 0x60
	case odr > 0:
		c.odr = 500
		bits = 0x40
	default:
		c.odr = 0
		bits = 0x00
	}
	c.ctrlReg1 = bits | (c.ctrlReg1 & ctrlLowBitsMask)
	c.setDur(c.dur)
}

// setFSR saturates the requested range in mg to the nearest supported one and
// returns the CTRL_REG4 byte selecting it. The threshold encoding is relative
// to the range, so it is refreshed as well.
func (c *Config) setFSR(fsr int64) byte {
	reg := byte(fsrBase)
	switch {
	case fsr <= 2048:
		c.fsr = 2048
	case fsr <= 4096:
		reg |= 0x30
		c.fsr = 4096
	default:
		reg |= 0x10
		c.fsr = 8192
	}
	c.setThs(c.ths)
	return reg
}

// setThs clamps the requested threshold in mg to [0, fsr) and derives its
// 8-bit register quantization.
func (c *Config) setThs(ths int64) {
	if ths >= c.fsr {
		ths = c.fsr - 1
	}
	if ths < 0 {
		ths = 0
	}
	c.ths = ths
	c.regThs = byte(ths * 128 / c.fsr)
}

// setDur derives the duration register value from the requested duration in
// ms and the currently configured rate. Only the register encoding is clamped
// to the device maximum; the physical field keeps the raw request so a later
// rate change can re-derive it.
func (c *Config) setDur(dur int64) {
	regDur := dur * c.odr / 1000000
	c.dur = dur
	if regDur > maxDuration {
		regDur = maxDuration
	}
	c.regDur = byte(regDur)
}

// setIRQ records the interrupt mode. The register bytes are derived on demand
// by irqBytes.
func (c *Config) setIRQ(irq IRQType) {
	c.irqType = irq
}

// irqBytes returns the CTRL_REG3 and INT1_CFG pair realizing the configured
// interrupt mode.
func (c *Config) irqBytes() (ctrl3, int1cfg byte) {
	switch c.irqType {
	case IRQDataReady:
		return 0x02, 0x00
	case IRQMotion:
		return 0x00, c.motInt1Cfg
	default:
		return 0x00, 0x00
	}
}

// fsrSelect rebuilds the CTRL_REG4 byte from the stored physical range. The
// transition paths use this instead of a cached byte so a range staged out of
// order still programs correctly.
func (c *Config) fsrSelect() byte {
	reg := byte(fsrBase)
	switch c.fsr {
	case 8192:
		reg |= 0x30
	case 4096:
		reg |= 0x10
	}
	return reg
}

type regWrite struct {
	reg byte
	val byte
}

// programSequence is the ordered list of register writes realizing c on the
// device. Both power transitions push the same sequence; they differ only in
// how write failures are treated.
func (c *Config) programSequence() []regWrite {
	ctrl3, int1cfg := c.irqBytes()
	return []regWrite{
		{regCtrl1, c.ctrlReg1},
		{regCtrl2, hpfConfig},
		{regCtrl4, c.fsrSelect()},
		{regInt1Ths, c.regThs},
		{regInt1Duration, c.regDur},
		{regCtrl3, ctrl3},
		{regInt1Cfg, int1cfg},
	}
}
