package serialping

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityMark
	ParitySpace
)

func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityOdd:
		return "odd"
	case ParityEven:
		return "even"
	case ParityMark:
		return "mark"
	case ParitySpace:
		return "space"
	default:
		return fmt.Sprintf("Parity(%d)", int(p))
	}
}

// ParseParity accepts the parity names used on the command line
// (none, odd, even, mark, space) or their first letter.
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "n":
		return ParityNone, nil
	case "odd", "o":
		return ParityOdd, nil
	case "even", "e":
		return ParityEven, nil
	case "mark", "m":
		return ParityMark, nil
	case "space", "s":
		return ParitySpace, nil
	default:
		return ParityNone, fmt.Errorf("%w: unknown parity %q", ErrInvalidConfig, s)
	}
}

// StopBits represents the number of stop bits per character
type StopBits int

const (
	StopBitsOne StopBits = iota
	StopBitsOnePointFive
	StopBitsTwo
)

func (s StopBits) String() string {
	switch s {
	case StopBitsOne:
		return "1"
	case StopBitsOnePointFive:
		return "1.5"
	case StopBitsTwo:
		return "2"
	default:
		return fmt.Sprintf("StopBits(%d)", int(s))
	}
}

// ParseStopBits accepts "1", "1.5" or "2".
func ParseStopBits(s string) (StopBits, error) {
	switch strings.TrimSpace(s) {
	case "1":
		return StopBitsOne, nil
	case "1.5":
		return StopBitsOnePointFive, nil
	case "2":
		return StopBitsTwo, nil
	default:
		return StopBitsOne, fmt.Errorf("%w: unknown stop bits %q", ErrInvalidConfig, s)
	}
}

// maxReadTimeout is the longest VTIME the termios layer can express (255 tenths).
const maxReadTimeout = 25500 * time.Millisecond

// Config holds the configuration for a serial port
type Config struct {
	BaudRate    int
	DataBits    int
	StopBits    StopBits
	Parity      Parity
	ReadTimeout time.Duration // Upper bound for a single blocking read, applied as VTIME
	Logger      zerolog.Logger
}

// Option is a functional option for configuring a serial port
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaudRate:    115200,
		DataBits:    8,
		StopBits:    StopBitsOne,
		Parity:      ParityNone,
		ReadTimeout: 1500 * time.Millisecond,
		Logger:      zerolog.Nop(),
	}
}

// validate checks settings that depend on each other.
func (c Config) validate() error {
	if c.StopBits == StopBitsOnePointFive && c.DataBits != 5 {
		// termios only yields 1.5 stop bits as CSTOPB combined with CS5
		return fmt.Errorf("%w: 1.5 stop bits requires 5 data bits", ErrInvalidConfig)
	}
	return nil
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if _, err := getBaudRate(rate); err != nil {
			return err
		}
		c.BaudRate = rate
		return nil
	}
}

// WithDataBits sets the number of data bits (5, 6, 7, or 8)
func WithDataBits(bits int) Option {
	return func(c *Config) error {
		if bits < 5 || bits > 8 {
			return ErrInvalidConfig
		}
		c.DataBits = bits
		return nil
	}
}

// WithStopBits sets the number of stop bits
func WithStopBits(bits StopBits) Option {
	return func(c *Config) error {
		if bits < StopBitsOne || bits > StopBitsTwo {
			return ErrInvalidConfig
		}
		c.StopBits = bits
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		if parity < ParityNone || parity > ParitySpace {
			return ErrInvalidConfig
		}
		c.Parity = parity
		return nil
	}
}

// WithReadTimeout sets how long a single read may block waiting for data.
// Zero makes reads return immediately with whatever is buffered. Durations
// are rounded up to tenths of a second and capped at 25.5s.
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout < 0 {
			return ErrInvalidConfig
		}
		if timeout > maxReadTimeout {
			timeout = maxReadTimeout
		}
		c.ReadTimeout = timeout
		return nil
	}
}

// WithLogger sets the logger used for events the port cannot report
// through return values, such as a failed close.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// readTimeoutTenths converts a read timeout to the VTIME unit.
func readTimeoutTenths(timeout time.Duration) uint8 {
	tenths := (timeout + 100*time.Millisecond - 1) / (100 * time.Millisecond)
	if tenths > 255 {
		tenths = 255
	}
	return uint8(tenths)
}
