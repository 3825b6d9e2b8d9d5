//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealBoard drives actual hardware using the Linux GPIO character device.
type RealBoard struct {
	chip   *gpiocdev.Chip
	inputs *gpiocdev.Lines
	mode   *gpiocdev.Line
	led    *gpiocdev.Line
	wake   chan time.Time
}

// NewRealBoard requests every line the stick uses. Inputs are pulled
// up because the buttons and the mode switch ground their pins when
// closed. The LED line starts driven low.
func NewRealBoard() (*RealBoard, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	inputs, err := chip.RequestLines(Pins[:LineModeSwitch], gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request input lines: %w", err)
	}

	// The mode switch is requested on its own because ArmWake has to
	// close and re-request it: edge detection is a request-time option.
	mode, err := chip.RequestLine(Pins[LineModeSwitch], gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		inputs.Close()
		chip.Close()
		return nil, fmt.Errorf("request mode switch pin %d: %w", Pins[LineModeSwitch], err)
	}

	led, err := chip.RequestLine(PinLED, gpiocdev.AsOutput(0))
	if err != nil {
		mode.Close()
		inputs.Close()
		chip.Close()
		return nil, fmt.Errorf("request led pin %d: %w", PinLED, err)
	}

	return &RealBoard{
		chip:   chip,
		inputs: inputs,
		mode:   mode,
		led:    led,
	}, nil
}

// Read returns the raw level of every input line, true meaning high.
func (b *RealBoard) Read() ([]bool, error) {
	if b.mode == nil {
		return nil, errors.New("mode switch line unavailable")
	}

	vals := make([]int, LineModeSwitch)
	if err := b.inputs.Values(vals); err != nil {
		return nil, fmt.Errorf("read input lines: %w", err)
	}

	modeVal, err := b.mode.Value()
	if err != nil {
		return nil, fmt.Errorf("read mode switch: %w", err)
	}

	raw := make([]bool, LineCount)
	for i, v := range vals {
		raw[i] = v != 0
	}
	raw[LineModeSwitch] = modeVal != 0
	return raw, nil
}

// SetLED drives the status LED.
func (b *RealBoard) SetLED(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := b.led.SetValue(v); err != nil {
		return fmt.Errorf("set led: %w", err)
	}
	return nil
}

// ArmWake swaps the mode switch from polling to falling edge
// detection. A fresh channel is handed out per arming so an edge
// captured under an earlier arming cannot be mistaken for a new one.
func (b *RealBoard) ArmWake() (<-chan time.Time, error) {
	if b.wake != nil {
		return nil, errors.New("wake already armed")
	}
	if err := b.mode.Close(); err != nil {
		return nil, fmt.Errorf("release mode switch for edge request: %w", err)
	}
	b.mode = nil

	ch := make(chan time.Time, 1)
	line, err := b.chip.RequestLine(Pins[LineModeSwitch],
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			select {
			case ch <- time.Now():
			default:
			}
		}))
	if err != nil {
		return nil, fmt.Errorf("request mode switch edge detection: %w", err)
	}

	b.mode = line
	b.wake = ch
	return ch, nil
}

// DisarmWake returns the mode switch to plain polling.
func (b *RealBoard) DisarmWake() error {
	if b.wake == nil {
		return nil
	}
	b.wake = nil

	if b.mode != nil {
		if err := b.mode.Close(); err != nil {
			b.mode = nil
			return fmt.Errorf("release edge request: %w", err)
		}
		b.mode = nil
	}

	line, err := b.chip.RequestLine(Pins[LineModeSwitch], gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		return fmt.Errorf("re-request mode switch pin %d: %w", Pins[LineModeSwitch], err)
	}
	b.mode = line
	return nil
}

// Close blanks the LED and releases GPIO resources.
func (b *RealBoard) Close() error {
	var errs []error

	if b.led != nil {
		if err := b.led.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("blank led: %w", err))
		}
		if err := b.led.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close led: %w", err))
		}
	}
	if b.mode != nil {
		if err := b.mode.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close mode switch: %w", err))
		}
	}
	if b.inputs != nil {
		if err := b.inputs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close input lines: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
