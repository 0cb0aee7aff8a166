package accel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_SetODR(t *testing.T) {
	tests := []struct {
		requested int64
		odr       int64
		ctrlReg1  byte
	}{
		{-5, 0, 0x00},
		{0, 0, 0x00},
		{1, 500, 0x40},
		{500, 500, 0x40},
		{501, 1000, 0x60},
		{1001, 2000, 0x80},
		{2001, 5000, 0xA0},
		{5001, 10000, 0xC0},
		{10001, 50000, 0x20},
		{50001, 100000, 0x28},
		{99999, 100000, 0x28},
		{100001, 400000, 0x30},
		{200000, 400000, 0x30},
		{400001, 1000000, 0x38},
		{5000000, 1000000, 0x38},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d", test.requested), func(t *testing.T) {
			var c Config
			c.setODR(test.requested)
			assert.Equal(t, test.odr, c.odr)
			assert.Equal(t, test.ctrlReg1, c.ctrlReg1)
		})
	}
}

func TestConfig_SetODR_PreservesAxisBits(t *testing.T) {
	c := Config{ctrlReg1: 0x07}
	c.setODR(200000)
	assert.Equal(t, byte(0x37), c.ctrlReg1)
	c.setODR(0)
	assert.Equal(t, byte(0x07), c.ctrlReg1)
}

func TestConfig_SetODR_RefreshesDuration(t *testing.T) {
	var c Config
	c.setODR(200000)
	c.setDur(2540)
	assert.Equal(t, byte(maxDuration), c.regDur)

	// dropping the rate re-derives the encoding from the raw request
	c.setODR(10000)
	assert.Equal(t, int64(2540), c.dur)
	assert.Equal(t, byte(25), c.regDur)
}

func TestConfig_SetFSR(t *testing.T) {
	tests := []struct {
		requested int64
		fsr       int64
		reg       byte
	}{
		{0, 2048, 0x40},
		{1024, 2048, 0x40},
		{2048, 2048, 0x40},
		{2049, 4096, 0x70},
		{4096, 4096, 0x70},
		{4097, 8192, 0x50},
		{6000, 8192, 0x50},
		{100000, 8192, 0x50},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d", test.requested), func(t *testing.T) {
			var c Config
			reg := c.setFSR(test.requested)
			assert.Equal(t, test.fsr, c.fsr)
			assert.Equal(t, test.reg, reg)
		})
	}
}

func TestConfig_SetFSR_Idempotent(t *testing.T) {
	var c Config
	c.setFSR(4096)
	c.setThs(500)
	first := c
	reg := c.setFSR(4096)
	assert.Equal(t, first, c)
	assert.Equal(t, byte(0x70), reg)
}

func TestConfig_SetFSR_ReclampsThreshold(t *testing.T) {
	var c Config
	c.setFSR(8192)
	c.setThs(5000)
	assert.Equal(t, int64(5000), c.ths)
	assert.Equal(t, byte(78), c.regThs)

	// shrinking the range pulls the stored threshold down with it
	c.setFSR(4096)
	assert.Equal(t, int64(4095), c.ths)
	assert.Equal(t, byte(127), c.regThs)
}

func TestConfig_SetThs(t *testing.T) {
	tests := []struct {
		fsr       int64
		requested int64
		ths       int64
		regThs    byte
	}{
		{2048, -10, 0, 0},
		{2048, 0, 0, 0},
		{2048, 80, 80, 5},
		{2048, 2048, 2047, 127},
		{4096, 40, 40, 1},
		{4096, 5000, 4095, 127},
		{8192, 8191, 8191, 127},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d@%d", test.requested, test.fsr), func(t *testing.T) {
			var c Config
			c.setFSR(test.fsr)
			c.setThs(test.requested)
			assert.Equal(t, test.ths, c.ths)
			assert.GreaterOrEqual(t, c.ths, int64(0))
			assert.Less(t, c.ths, c.fsr)
			assert.Equal(t, test.regThs, c.regThs)
		})
	}
}

func TestConfig_SetDur(t *testing.T) {
	tests := []struct {
		odr       int64
		requested int64
		regDur    byte
	}{
		{0, 1000, 0},
		{200000, 100, 40},
		{200000, 2540, maxDuration},
		{40000, 1000, 50},
		{400, 2540, 1},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%dms@%dmHz", test.requested, test.odr), func(t *testing.T) {
			var c Config
			c.setODR(test.odr)
			c.setDur(test.requested)
			// the register encoding is clamped, the physical field is not
			assert.Equal(t, test.requested, c.dur)
			assert.Equal(t, test.regDur, c.regDur)
		})
	}
}

func TestConfig_IRQBytes(t *testing.T) {
	c := Config{motInt1Cfg: 0x95}
	tests := []struct {
		irq     IRQType
		ctrl3   byte
		int1cfg byte
	}{
		{IRQNone, 0x00, 0x00},
		{IRQMotion, 0x00, 0x95},
		{IRQDataReady, 0x02, 0x00},
		{IRQType(42), 0x00, 0x00},
	}
	for _, test := range tests {
		t.Run(test.irq.String(), func(t *testing.T) {
			c.setIRQ(test.irq)
			ctrl3, int1cfg := c.irqBytes()
			assert.Equal(t, test.ctrl3, ctrl3)
			assert.Equal(t, test.int1cfg, int1cfg)
		})
	}
}

func TestConfig_FSRSelect(t *testing.T) {
	tests := []struct {
		fsr int64
		reg byte
	}{
		{2048, 0x40},
		{4096, 0x50},
		{8192, 0x70},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d", test.fsr), func(t *testing.T) {
			c := Config{fsr: test.fsr}
			assert.Equal(t, test.reg, c.fsrSelect())
		})
	}
}
