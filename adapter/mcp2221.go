package adapter

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/karalabe/hid"

	"github.com/mklimuk/apds9960"
)

// MCP2221 USB identifiers.
const VendorID = 0x04D8
const ProductID = 0x00DD

// HID report command codes.
const (
	cmdStatusSet = 0x10
	cmdReadData  = 0x40
	cmdI2CWrite  = 0x90
	cmdI2CRead   = 0x91
)

// cancel sub-command of the status/set report
const subCancelTransfer = 0x10

var _ apds9960.BusCloser = &MCP2221{}

// MCP2221 drives the Microchip MCP2221 USB to I2C bridge over raw 64 byte
// HID reports, exposing it as a bus connection for the sensor. Commands are
// serialized internally; the device is enumerated and opened per exchange,
// which keeps the bridge usable from short-lived CLI invocations.
type MCP2221 struct {
	mx           sync.Mutex
	request      []byte
	response     []byte
	responseWait time.Duration
}

// Status is the I2C engine state reported by the bridge.
type Status struct {
	I2CDataBufferCounter   int    `yaml:"i2c_data_buffer_counter"`
	I2CSpeedDivider        int    `yaml:"i2c_speed_divider"`
	I2CTimeout             int    `yaml:"i2c_timeout"`
	CurrentAddress         string `yaml:"current_address"`
	LastWriteRequestedSize uint16 `yaml:"last_write_requested_size"`
	LastWriteSentSize      uint16 `yaml:"last_write_sent_size"`
	ReadPending            int    `yaml:"read_pending"`
}

func NewMCP2221() *MCP2221 {
	return &MCP2221{
		request:      make([]byte, 64),
		response:     make([]byte, 64),
		responseWait: 50 * time.Millisecond,
	}
}

// Tx performs the write phase and/or the read phase of an I2C transaction
// with the 7-bit address addr.
func (d *MCP2221) Tx(addr uint16, w, r []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	if len(w) > 0 {
		err := d.write(byte(addr), w)
		if err != nil {
			return err
		}
	}
	if len(r) > 0 {
		err := d.read(byte(addr), r)
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *MCP2221) write(address byte, buffer []byte) error {
	d.resetBuffers()
	d.request[0] = cmdI2CWrite
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(buffer)))
	d.request[3] = address << 1
	copy(d.request[4:], buffer)
	err := d.send(true)
	if err != nil {
		return fmt.Errorf("write to %x failed: %w", address, err)
	}
	// write could not be performed
	if d.response[1] == 0x01 {
		slog.Debug("bridge busy")
		return apds9960.ErrBusBusy
	}
	return nil
}

func (d *MCP2221) read(address byte, buffer []byte) error {
	d.resetBuffers()
	d.request[0] = cmdI2CRead
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(buffer)))
	d.request[3] = address<<1 + 1
	err := d.send(true)
	if err != nil {
		return fmt.Errorf("bus read from %x failed: %w", address, err)
	}
	d.request[0] = cmdReadData
	resetBuffer(d.response)
	err = d.send(true)
	if err != nil {
		return fmt.Errorf("error getting read data from bridge: %w", err)
	}
	if d.response[1] == 0x41 {
		return fmt.Errorf("error reading the I2C slave data from the I2C engine")
	}
	if d.response[3] == 127 || int(d.response[3]) != len(buffer) {
		return fmt.Errorf("invalid data size byte; expected %d, got %d", len(buffer), d.response[3])
	}
	copy(buffer, d.response[4:])
	return nil
}

// Status queries the bridge's I2C engine state.
func (d *MCP2221) Status() (*Status, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = cmdStatusSet
	err := d.send(true)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	return bufferToStatus(d.response), nil
}

// ReleaseBus cancels any pending transfer and frees the I2C engine.
func (d *MCP2221) ReleaseBus() (*Status, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.releaseBus()
}

// Close releases the I2C engine. The HID handle itself is opened per
// exchange, so there is nothing else to free.
func (d *MCP2221) Close() error {
	d.mx.Lock()
	defer d.mx.Unlock()
	_, err := d.releaseBus()
	return err
}

func (d *MCP2221) releaseBus() (*Status, error) {
	d.resetBuffers()
	d.request[0] = cmdStatusSet
	d.request[2] = subCancelTransfer
	err := d.send(true)
	if err != nil {
		return nil, fmt.Errorf("release request failed: %w", err)
	}
	return bufferToStatus(d.response), nil
}

func bufferToStatus(buffer []byte) *Status {
	/*
		9:  Lower byte (16-bit value) of the requested I2C transfer length
		10: Higher byte (16-bit value) of the requested I2C transfer length
		11: Lower byte (16-bit value) of the already transferred (through I2C) number of bytes
		12: Higher byte (16-bit value) of the already transferred (through I2C) number of bytes
		13: Internal I2C data buffer counter
		14: Current I2C communication speed divider value
		15: Current I2C timeout value
		16: Lower byte (16-bit value) of the I2C address being used
		17: Higher byte (16-bit value) of the I2C address being used
	*/
	status := &Status{
		I2CDataBufferCounter: int(buffer[13]),
		I2CSpeedDivider:      int(buffer[14]),
		I2CTimeout:           int(buffer[15]),
		ReadPending:          int(buffer[25]),
		CurrentAddress:       hex.EncodeToString(buffer[16:18]),
	}
	status.LastWriteRequestedSize = binary.LittleEndian.Uint16(buffer[9:11])
	status.LastWriteSentSize = binary.LittleEndian.Uint16(buffer[11:13])
	return status
}

func (d *MCP2221) send(response bool) error {
	devs := hid.Enumerate(VendorID, ProductID)
	if len(devs) == 0 {
		return fmt.Errorf("no MCP2221 bridge on USB: %w", apds9960.ErrDeviceNotFound)
	}
	if len(devs) > 1 {
		slog.Debug("multiple bridges found, using the first one", "count", len(devs))
	}
	dev, err := devs[0].Open()
	if err != nil {
		return fmt.Errorf("error opening device: %w", err)
	}
	defer func() { _ = dev.Close() }()
	slog.Debug("sending report to bridge", "report", hex.EncodeToString(d.request))
	n, err := dev.Write(d.request)
	if err != nil {
		return fmt.Errorf("could not write request: %w", err)
	}
	if n != 64 {
		return fmt.Errorf("short write: %d", n)
	}
	if !response {
		return nil
	}
	time.Sleep(d.responseWait)
	n, err = dev.Read(d.response)
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}
	if n != 64 {
		return fmt.Errorf("short read: %d", n)
	}
	slog.Debug("read report from bridge", "report", hex.EncodeToString(d.response))
	return nil
}

func (d *MCP2221) resetBuffers() {
	resetBuffer(d.request)
	resetBuffer(d.response)
}

func resetBuffer(buf []byte) {
	for i := range buf {
		buf[i] = 0x00
	}
}
