package serialping

import (
	"fmt"
	"strings"
	"time"
)

// ConnectionParams describes one connection to open. It is built once by the
// caller and consumed by a single exchange.
type ConnectionParams struct {
	Device   string
	BaudRate int
	DataBits int
	StopBits StopBits
	Parity   Parity

	// Timeout bounds both the response window and each blocking read.
	// Zero means return immediately with whatever is available.
	Timeout time.Duration
}

// DefaultParams returns the parameters used when the caller sets nothing.
func DefaultParams() ConnectionParams {
	c := DefaultConfig()
	return ConnectionParams{
		Device:   "/dev/ttyACM0",
		BaudRate: c.BaudRate,
		DataBits: c.DataBits,
		StopBits: c.StopBits,
		Parity:   c.Parity,
		Timeout:  c.ReadTimeout,
	}
}

// Validate reports the first problem with p, wrapped in ErrConfig.
func (p ConnectionParams) Validate() error {
	if strings.TrimSpace(p.Device) == "" {
		return fmt.Errorf("%w: %w", ErrConfig, ErrMissingDevice)
	}
	if p.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout %v", ErrConfig, p.Timeout)
	}

	config := DefaultConfig()
	for _, opt := range p.Options() {
		if err := opt(&config); err != nil {
			return fmt.Errorf("%w: %w", ErrConfig, err)
		}
	}
	if err := config.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return nil
}

// Options converts p into port options for Open.
func (p ConnectionParams) Options() []Option {
	return []Option{
		WithBaudRate(p.BaudRate),
		WithDataBits(p.DataBits),
		WithStopBits(p.StopBits),
		WithParity(p.Parity),
		WithReadTimeout(p.Timeout),
	}
}

func (p ConnectionParams) String() string {
	return fmt.Sprintf("%s @ %d %d%s%s", p.Device, p.BaudRate, p.DataBits,
		strings.ToUpper(p.Parity.String()[:1]), p.StopBits)
}
