package i2c

import (
	"context"
	"fmt"
	"sync"

	"github.com/mklimuk/lsm303dlx"
	gi2c "gobot.io/x/gobot/v2/drivers/i2c"
)

var _ lsm303dlx.RegisterBus = &GobotBus{}

// GobotBus drives the sensor through a gobot I2C connector, covering the SBC
// platforms gobot supports (Raspberry Pi, NanoPi Neo, ...). The adaptor must
// be connected before first use.
type GobotBus struct {
	mx        sync.Mutex
	connector gi2c.Connector
	busNr     int
	conns     map[byte]gi2c.Connection
}

func NewGobotBus(connector gi2c.Connector, busNr int) *GobotBus {
	return &GobotBus{
		connector: connector,
		busNr:     busNr,
		conns:     make(map[byte]gi2c.Connection),
	}
}

func (b *GobotBus) WriteRegister(ctx context.Context, address, register, value byte) error {
	conn, err := b.connection(address)
	if err != nil {
		return err
	}
	if err := conn.WriteByteData(register, value); err != nil {
		return fmt.Errorf("could not write register %#02x on %x: %w", register, address, err)
	}
	return nil
}

func (b *GobotBus) ReadRegisters(ctx context.Context, address, register byte, buffer []byte) error {
	conn, err := b.connection(address)
	if err != nil {
		return err
	}
	if err := conn.ReadBlockData(register, buffer); err != nil {
		return fmt.Errorf("could not read register %#02x on %x: %w", register, address, err)
	}
	return nil
}

func (b *GobotBus) Release(ctx context.Context) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	var last error
	for address, conn := range b.conns {
		if err := conn.Close(); err != nil {
			last = fmt.Errorf("could not close connection to %x: %w", address, err)
		}
		delete(b.conns, address)
	}
	return last
}

// connection returns the per-address connection, opening it on first use.
func (b *GobotBus) connection(address byte) (gi2c.Connection, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	if conn, ok := b.conns[address]; ok {
		return conn, nil
	}
	conn, err := b.connector.GetI2cConnection(int(address), b.busNr)
	if err != nil {
		return nil, fmt.Errorf("could not open i2c connection to %x: %w", address, err)
	}
	b.conns[address] = conn
	return conn, nil
}
