//go:build !linux

package gpio

import (
	"errors"
	"time"
)

// RealBoard is not available on non-Linux platforms.
type RealBoard struct{}

// NewRealBoard returns an error on non-Linux platforms.
func NewRealBoard() (*RealBoard, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (b *RealBoard) Read() ([]bool, error) {
	return nil, errors.New("gpio: not supported")
}

// SetLED is not implemented on non-Linux platforms.
func (b *RealBoard) SetLED(bool) error {
	return errors.New("gpio: not supported")
}

// ArmWake is not implemented on non-Linux platforms.
func (b *RealBoard) ArmWake() (<-chan time.Time, error) {
	return nil, errors.New("gpio: not supported")
}

// DisarmWake is not implemented on non-Linux platforms.
func (b *RealBoard) DisarmWake() error {
	return nil
}

// Close is not implemented on non-Linux platforms.
func (b *RealBoard) Close() error {
	return nil
}
