// Package serialport adapts a real UART device to the linklayer.Port
// interface, the way the teacher's usock package wraps tarm/serial for
// byte-at-a-time reads.
package serialport

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// DefaultReadTimeout is the short per-read deadline that lets the
// session's wait loops re-check their own timer between reads.
const DefaultReadTimeout = 100 * time.Millisecond

// Config describes how to open the underlying device.
type Config struct {
	Device      string
	Baud        int
	ReadTimeout time.Duration
}

func (c *Config) setDefaults() {
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
}

// Port wraps a *serial.Port to present one-byte-at-a-time reads with a
// short internal timeout, satisfying linklayer.Port.
type Port struct {
	port *serial.Port
	buf  [1]byte
}

// Open configures and opens the serial device.
func Open(cfg Config) (*Port, error) {
	cfg.setDefaults()

	sc := &serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: cfg.ReadTimeout,
	}

	p, err := serial.OpenPort(sc)
	if err != nil {
		return nil, fmt.Errorf("serialport: open %s: %w", cfg.Device, err)
	}

	return &Port{port: p}, nil
}

// ReadByte blocks for up to the configured ReadTimeout. ok is false when
// no byte arrived within that window.
func (p *Port) ReadByte() (b byte, ok bool, err error) {
	n, err := p.port.Read(p.buf[:])
	if err != nil {
		if err == io.EOF {
			return 0, false, nil
		}
		return 0, false, err
	}
	if n == 0 {
		return 0, false, nil
	}
	return p.buf[0], true, nil
}

// Write sends data in a single call to the underlying port.
func (p *Port) Write(data []byte) (int, error) {
	return p.port.Write(data)
}

// Close releases the underlying device.
func (p *Port) Close() error {
	return p.port.Close()
}
