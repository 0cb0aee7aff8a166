package accel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRegisterBus is a mock implementation of lsm303dlx.RegisterBus using
// testify/mock.
type MockRegisterBus struct {
	mock.Mock
}

func (m *MockRegisterBus) WriteRegister(ctx context.Context, address, register, value byte) error {
	args := m.Called(ctx, address, register, value)
	return args.Error(0)
}

func (m *MockRegisterBus) ReadRegisters(ctx context.Context, address, register byte, buffer []byte) error {
	args := m.Called(ctx, address, register, buffer)
	if data, ok := args.Get(0).([]byte); ok && len(data) <= len(buffer) {
		copy(buffer, data)
	}
	return args.Error(1)
}

func (m *MockRegisterBus) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestNew_NilTransport(t *testing.T) {
	dev, err := New(nil)
	assert.Nil(t, dev)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestNew_SeedsDefaults(t *testing.T) {
	bus := new(MockRegisterBus)
	dev, err := New(bus)
	assert.NoError(t, err)

	// attach never touches the device
	bus.AssertNumberOfCalls(t, "WriteRegister", 0)
	bus.AssertNumberOfCalls(t, "ReadRegisters", 0)

	suspend := dev.Config(Suspend)
	assert.Equal(t, int64(0), suspend.ODR())
	assert.Equal(t, int64(2048), suspend.FSR())
	assert.Equal(t, int64(80), suspend.Ths())
	assert.Equal(t, int64(1000), suspend.Dur())
	assert.Equal(t, IRQNone, suspend.IRQ())
	// power-down rate field, axis enables preserved from the factory byte
	assert.Equal(t, byte(0x07), suspend.ctrlReg1)
	assert.Equal(t, byte(0x2A), suspend.motInt1Cfg)
	assert.Equal(t, byte(5), suspend.regThs)
	assert.Equal(t, byte(0), suspend.regDur)

	resume := dev.Config(Resume)
	assert.Equal(t, int64(400000), resume.ODR())
	assert.Equal(t, int64(2048), resume.FSR())
	assert.Equal(t, int64(40), resume.Ths())
	assert.Equal(t, int64(2540), resume.Dur())
	assert.Equal(t, IRQNone, resume.IRQ())
	assert.Equal(t, byte(0x37), resume.ctrlReg1)
	assert.Equal(t, byte(0x95), resume.motInt1Cfg)
	assert.Equal(t, byte(2), resume.regThs)
	assert.Equal(t, byte(maxDuration), resume.regDur)
}

func TestNew_NominalRange(t *testing.T) {
	dev, err := New(new(MockRegisterBus), WithNominalRange(6000))
	assert.NoError(t, err)
	suspend := dev.Config(Suspend)
	resume := dev.Config(Resume)
	assert.Equal(t, int64(8192), suspend.FSR())
	assert.Equal(t, int64(8192), resume.FSR())
}

func TestSetConfig_StagedOnly(t *testing.T) {
	bus := new(MockRegisterBus)
	dev, _ := New(bus)
	ctx := context.Background()

	assert.NoError(t, dev.SetConfig(ctx, ODRResume, false, 7000))
	assert.NoError(t, dev.SetConfig(ctx, NMotThs, false, 5000))

	odr, err := dev.GetConfig(ODRResume)
	assert.NoError(t, err)
	assert.Equal(t, int64(10000), odr)
	ths, err := dev.GetConfig(NMotThs)
	assert.NoError(t, err)
	assert.Equal(t, int64(2047), ths)

	// staging alone must not generate bus traffic
	bus.AssertNumberOfCalls(t, "WriteRegister", 0)
}

func TestSetConfig_Apply(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		key    ConfigKey
		value  int64
		writes []struct{ reg, val byte }
	}{
		{
			name:  "threshold writes INT1_THS",
			key:   MotThs,
			value: 100,
			writes: []struct{ reg, val byte }{
				{regInt1Ths, 6},
			},
		},
		{
			name:  "duration writes INT1_DURATION",
			key:   NMotDur,
			value: 100,
			writes: []struct{ reg, val byte }{
				{regInt1Duration, 40},
			},
		},
		{
			name:  "rate writes duration then CTRL_REG1",
			key:   ODRResume,
			value: 200000,
			writes: []struct{ reg, val byte }{
				{regInt1Duration, maxDuration},
				{regCtrl1, 0x37},
			},
		},
		{
			name:  "range writes threshold then CTRL_REG4",
			key:   FSRResume,
			value: 6000,
			writes: []struct{ reg, val byte }{
				{regInt1Ths, 0},
				{regCtrl4, 0x50},
			},
		},
		{
			name:  "irq writes CTRL_REG3 then INT1_CFG",
			key:   IRQResume,
			value: int64(IRQMotion),
			writes: []struct{ reg, val byte }{
				{regCtrl3, 0x00},
				{regInt1Cfg, 0x95},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bus := new(MockRegisterBus)
			dev, _ := New(bus)
			for _, w := range test.writes {
				bus.On("WriteRegister", mock.Anything, byte(defaultAddress), w.reg, w.val).
					Return(nil).Once()
			}
			assert.NoError(t, dev.SetConfig(ctx, test.key, true, test.value))
			bus.AssertExpectations(t)
		})
	}
}

func TestSetConfig_UnknownKey(t *testing.T) {
	dev, _ := New(new(MockRegisterBus))
	err := dev.SetConfig(context.Background(), ConfigKey(99), false, 1)
	assert.ErrorIs(t, err, ErrNotImplemented)
	_, err = dev.GetConfig(ConfigKey(99))
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestGetConfig(t *testing.T) {
	dev, _ := New(new(MockRegisterBus))
	tests := []struct {
		key      ConfigKey
		expected int64
	}{
		{ODRSuspend, 0},
		{ODRResume, 400000},
		{FSRSuspend, 2048},
		{FSRResume, 2048},
		{MotThs, 80},
		{NMotThs, 40},
		{MotDur, 1000},
		{NMotDur, 2540},
		{IRQSuspend, int64(IRQNone)},
		{IRQResume, int64(IRQNone)},
	}
	for _, test := range tests {
		t.Run(test.key.String(), func(t *testing.T) {
			value, err := dev.GetConfig(test.key)
			assert.NoError(t, err)
			assert.Equal(t, test.expected, value)
		})
	}
}

func TestResume_ProgramsFullSequence(t *testing.T) {
	bus := new(MockRegisterBus)
	dev, _ := New(bus, WithSettleDelay(0))
	ctx := context.Background()

	writes := []struct{ reg, val byte }{
		{regCtrl1, 0x37},
		{regCtrl2, hpfConfig},
		{regCtrl4, 0x40},
		{regInt1Ths, 2},
		{regInt1Duration, maxDuration},
		{regCtrl3, 0x00},
		{regInt1Cfg, 0x00},
	}
	for _, w := range writes {
		bus.On("WriteRegister", mock.Anything, byte(defaultAddress), w.reg, w.val).
			Return(nil).Once()
	}
	bus.On("ReadRegisters", mock.Anything, byte(defaultAddress), byte(regHPFilterReset), mock.Anything).
		Return([]byte{0x00}, nil).Once()

	assert.NoError(t, dev.Resume(ctx))
	bus.AssertExpectations(t)
}

func TestResume_FailFast(t *testing.T) {
	bus := new(MockRegisterBus)
	dev, _ := New(bus, WithSettleDelay(0))
	ctx := context.Background()
	busErr := errors.New("i2c write failed")

	bus.On("WriteRegister", mock.Anything, byte(defaultAddress), byte(regCtrl1), mock.Anything).
		Return(nil).Once()
	bus.On("WriteRegister", mock.Anything, byte(defaultAddress), byte(regCtrl2), mock.Anything).
		Return(nil).Once()
	// third step, the full-scale register, fails
	bus.On("WriteRegister", mock.Anything, byte(defaultAddress), byte(regCtrl4), mock.Anything).
		Return(busErr).Once()

	err := dev.Resume(ctx)
	assert.ErrorIs(t, err, busErr)
	assert.Contains(t, err.Error(), "CTRL_REG4")
	// no threshold, duration or interrupt writes after the failing step
	bus.AssertNumberOfCalls(t, "WriteRegister", 3)
	bus.AssertNotCalled(t, "ReadRegisters", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	bus.AssertExpectations(t)
}

func TestSuspend_BestEffort(t *testing.T) {
	bus := new(MockRegisterBus)
	dev, _ := New(bus)
	ctx := context.Background()
	busErr := errors.New("i2c write failed")

	// the first write fails but every following register is still programmed
	bus.On("WriteRegister", mock.Anything, byte(defaultAddress), byte(regCtrl1), byte(0x07)).
		Return(busErr).Once()
	bus.On("WriteRegister", mock.Anything, byte(defaultAddress), byte(regCtrl2), byte(hpfConfig)).
		Return(nil).Once()
	bus.On("WriteRegister", mock.Anything, byte(defaultAddress), byte(regCtrl4), byte(0x40)).
		Return(nil).Once()
	bus.On("WriteRegister", mock.Anything, byte(defaultAddress), byte(regInt1Ths), byte(5)).
		Return(nil).Once()
	bus.On("WriteRegister", mock.Anything, byte(defaultAddress), byte(regInt1Duration), byte(0)).
		Return(nil).Once()
	bus.On("WriteRegister", mock.Anything, byte(defaultAddress), byte(regCtrl3), byte(0x00)).
		Return(nil).Once()
	bus.On("WriteRegister", mock.Anything, byte(defaultAddress), byte(regInt1Cfg), byte(0x00)).
		Return(nil).Once()
	bus.On("ReadRegisters", mock.Anything, byte(defaultAddress), byte(regHPFilterReset), mock.Anything).
		Return([]byte{0x00}, nil).Once()

	// only the closing diagnostic read carries the reported status
	assert.NoError(t, dev.Suspend(ctx))
	bus.AssertExpectations(t)
}

func TestSuspend_ReportsDiagnosticReadFailure(t *testing.T) {
	bus := new(MockRegisterBus)
	dev, _ := New(bus)
	busErr := errors.New("i2c read failed")

	bus.On("WriteRegister", mock.Anything, byte(defaultAddress), mock.Anything, mock.Anything).
		Return(nil).Times(7)
	bus.On("ReadRegisters", mock.Anything, byte(defaultAddress), byte(regHPFilterReset), mock.Anything).
		Return(nil, busErr).Once()

	assert.ErrorIs(t, dev.Suspend(context.Background()), busErr)
	bus.AssertExpectations(t)
}

func TestApply_DispatchesByState(t *testing.T) {
	bus := new(MockRegisterBus)
	dev, _ := New(bus, WithSettleDelay(0))
	ctx := context.Background()

	bus.On("WriteRegister", mock.Anything, byte(defaultAddress), mock.Anything, mock.Anything).
		Return(nil)
	bus.On("ReadRegisters", mock.Anything, byte(defaultAddress), byte(regHPFilterReset), mock.Anything).
		Return([]byte{0x00}, nil)

	assert.NoError(t, dev.Apply(ctx, Suspend))
	assert.NoError(t, dev.Apply(ctx, Resume))
	bus.AssertNumberOfCalls(t, "WriteRegister", 14)
}

func TestReadSample_NotReady(t *testing.T) {
	bus := new(MockRegisterBus)
	dev, _ := New(bus)

	bus.On("ReadRegisters", mock.Anything, byte(defaultAddress), byte(regStatus), mock.Anything).
		Return([]byte{0x00}, nil).Once()

	data, err := dev.ReadSample(context.Background())
	assert.Nil(t, data)
	assert.ErrorIs(t, err, ErrDataNotReady)
	// the sample registers must not be touched
	bus.AssertNumberOfCalls(t, "ReadRegisters", 1)
	bus.AssertExpectations(t)
}

func TestReadSample_BurstReadsWhenReady(t *testing.T) {
	bus := new(MockRegisterBus)
	dev, _ := New(bus)
	sample := []byte{0x01, 0x80, 0xFF, 0x3C, 0x40, 0x00}

	bus.On("ReadRegisters", mock.Anything, byte(defaultAddress), byte(regStatus), mock.Anything).
		Return([]byte{0x0F}, nil).Once()
	bus.On("ReadRegisters", mock.Anything, byte(defaultAddress), byte(regOutXL|burstReadFlag), mock.Anything).
		Return(sample, nil).Once()

	data, err := dev.ReadSample(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, sample, data)
	bus.AssertExpectations(t)
}

func TestReadSample_StatusReadFailure(t *testing.T) {
	bus := new(MockRegisterBus)
	dev, _ := New(bus)
	busErr := errors.New("i2c read failed")

	bus.On("ReadRegisters", mock.Anything, byte(defaultAddress), byte(regStatus), mock.Anything).
		Return(nil, busErr).Once()

	_, err := dev.ReadSample(context.Background())
	assert.ErrorIs(t, err, busErr)
	assert.Contains(t, err.Error(), "STATUS_REG")
	bus.AssertExpectations(t)
}

func TestDecodeSample(t *testing.T) {
	x, y, z := DecodeSample([]byte{0x01, 0x80, 0xFF, 0x3C, 0x40, 0x00})
	assert.Equal(t, int16(0x0180), x)
	assert.Equal(t, int16(-196), y)
	assert.Equal(t, int16(0x4000), z)
}

func TestClose_ReleasesTransport(t *testing.T) {
	bus := new(MockRegisterBus)
	dev, _ := New(bus)
	bus.On("Release", mock.Anything).Return(nil).Once()
	assert.NoError(t, dev.Close(context.Background()))
	bus.AssertExpectations(t)
}

func TestParseConfigKey(t *testing.T) {
	for key, name := range configKeyNames {
		parsed, err := ParseConfigKey(name)
		assert.NoError(t, err)
		assert.Equal(t, key, parsed)
	}
	_, err := ParseConfigKey("bogus")
	assert.ErrorIs(t, err, ErrNotImplemented)
}
