// internal/compose/serial.go
package compose

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Port is the slice of serial operations the source needs (and the seam
// for test fakes).
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
	Close() error
}

// PortFactory opens a serial port.
type PortFactory func(path string, mode *serial.Mode) (Port, error)

// DefaultPortFactory opens real serial ports.
func DefaultPortFactory(path string, mode *serial.Mode) (Port, error) {
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("compose: open serial port %s: %w", path, err)
	}
	return port, nil
}

// SerialSource adapts a serial port to the ByteSource contract. Reads
// use a near-zero timeout so Available never stalls the device loop.
type SerialSource struct {
	port    Port
	pending []byte
	scratch [16]byte
}

// OpenSerial opens path at the configured baud rate through factory.
func OpenSerial(path string, baud int, factory PortFactory) (*SerialSource, error) {
	if factory == nil {
		factory = DefaultPortFactory
	}
	port, err := factory(path, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(time.Millisecond); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("compose: set read timeout on %s: %w", path, err)
	}
	return &SerialSource{port: port}, nil
}

// Available polls the port once and buffers whatever arrived.
func (s *SerialSource) Available() bool {
	if len(s.pending) > 0 {
		return true
	}
	n, err := s.port.Read(s.scratch[:])
	if err != nil || n == 0 {
		return false
	}
	s.pending = append(s.pending, s.scratch[:n]...)
	return true
}

// ReadByte pops one buffered byte.
func (s *SerialSource) ReadByte() (byte, error) {
	if !s.Available() {
		return 0, fmt.Errorf("compose: read on serial source with no byte available")
	}
	b := s.pending[0]
	s.pending = s.pending[1:]
	return b, nil
}

// WriteByte echoes one byte to the port.
func (s *SerialSource) WriteByte(b byte) error {
	if _, err := s.port.Write([]byte{b}); err != nil {
		return fmt.Errorf("compose: echo to serial port: %w", err)
	}
	return nil
}

// Close releases the port.
func (s *SerialSource) Close() error {
	return s.port.Close()
}
