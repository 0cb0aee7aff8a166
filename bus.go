package lsm303dlx

import (
	"context"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

// RegisterReader reads one or more consecutive device registers starting at
// the given register address.
type RegisterReader interface {
	ReadRegisters(ctx context.Context, address, register byte, buffer []byte) error
}

// RegisterWriter performs single-register writes.
type RegisterWriter interface {
	WriteRegister(ctx context.Context, address, register, value byte) error
	Release(ctx context.Context) error
}

// RegisterBus is the serial transport the driver talks through. The device is
// register oriented: configuration happens through single-register writes and
// samples come back as multi-byte register reads.
type RegisterBus interface {
	RegisterReader
	RegisterWriter
}
