package serialping

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// SettleDelay is how long Open waits after configuring the port. Many
// microcontroller boards reset when the port opens and would otherwise miss
// the first bytes written.
const SettleDelay = 200 * time.Millisecond

// Port represents an open serial connection. A Port is owned by one
// goroutine at a time and cannot be reopened once closed.
type Port interface {
	// Write returns the number of bytes the OS accepted, which may be
	// fewer than len(data).
	Write(data []byte) (int, error)

	// Read reads at most len(buf) bytes. It blocks for at most the
	// configured read timeout when nothing is buffered.
	Read(buf []byte) (int, error)

	// BytesAvailable returns the number of bytes waiting in the input
	// queue, or -1 once the link has hung up and nothing is left to read.
	BytesAvailable() (int, error)

	// Close releases the port. It is safe to call more than once and
	// never fails.
	Close() error
}

// port is a termios-configured tty descriptor
type port struct {
	mu     sync.RWMutex
	fd     int
	device string
	config Config
	closed bool
}

// getBaudRate converts an integer baud rate to the unix constant
func getBaudRate(rate int) (uint32, error) {
	switch rate {
	case 50:
		return unix.B50, nil
	case 75:
		return unix.B75, nil
	case 110:
		return unix.B110, nil
	case 134:
		return unix.B134, nil
	case 150:
		return unix.B150, nil
	case 200:
		return unix.B200, nil
	case 300:
		return unix.B300, nil
	case 600:
		return unix.B600, nil
	case 1200:
		return unix.B1200, nil
	case 1800:
		return unix.B1800, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	case 460800:
		return unix.B460800, nil
	case 500000:
		return unix.B500000, nil
	case 576000:
		return unix.B576000, nil
	case 921600:
		return unix.B921600, nil
	case 1000000:
		return unix.B1000000, nil
	case 1152000:
		return unix.B1152000, nil
	case 1500000:
		return unix.B1500000, nil
	case 2000000:
		return unix.B2000000, nil
	case 2500000:
		return unix.B2500000, nil
	case 3000000:
		return unix.B3000000, nil
	case 3500000:
		return unix.B3500000, nil
	case 4000000:
		return unix.B4000000, nil
	default:
		return 0, ErrInvalidBaudRate
	}
}

// getDataBits converts a data bit count to the CSIZE flag
func getDataBits(bits int) (uint32, error) {
	switch bits {
	case 5:
		return unix.CS5, nil
	case 6:
		return unix.CS6, nil
	case 7:
		return unix.CS7, nil
	case 8:
		return unix.CS8, nil
	default:
		return 0, ErrInvalidConfig
	}
}

// classifyOpenError maps errno values from open(2) onto the package sentinels.
func classifyOpenError(device string, err error) error {
	switch {
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENXIO), errors.Is(err, unix.ENODEV):
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, device)
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, device)
	case errors.Is(err, unix.EBUSY):
		return fmt.Errorf("%w: %s", ErrDeviceInUse, device)
	default:
		return fmt.Errorf("failed to open %s: %w", device, err)
	}
}

// Open opens and configures the serial device, then waits SettleDelay
// before returning so the device can finish a reset triggered by the open.
func Open(device string, opts ...Option) (Port, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	// Non-blocking so open does not hang waiting for carrier detect
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, classifyOpenError(device, err)
	}

	if err := configurePort(fd, config); err != nil {
		unix.Close(fd)
		return nil, err
	}

	// Reads block again, bounded by VTIME
	if err := unix.SetNonblock(fd, false); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to clear O_NONBLOCK: %w", err)
	}

	config.Logger.Debug().
		Str("device", device).
		Int("baud", config.BaudRate).
		Dur("settle", SettleDelay).
		Msg("port configured, waiting for device to settle")
	time.Sleep(SettleDelay)

	return &port{
		fd:     fd,
		device: device,
		config: config,
	}, nil
}

// configurePort puts the port in raw mode with the requested line settings
func configurePort(fd int, config Config) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("failed to get termios: %w", err)
	}

	baudRate, err := getBaudRate(config.BaudRate)
	if err != nil {
		return err
	}
	dataBits, err := getDataBits(config.DataBits)
	if err != nil {
		return err
	}

	termios.Iflag = 0 // No input processing
	termios.Oflag = 0 // No output processing
	termios.Lflag = 0 // No line processing (raw mode)
	termios.Cflag = unix.CREAD | unix.CLOCAL | baudRate | dataBits

	// With CS5 the hardware interprets CSTOPB as 1.5 stop bits
	if config.StopBits != StopBitsOne {
		termios.Cflag |= unix.CSTOPB
	}

	switch config.Parity {
	case ParityOdd:
		termios.Cflag |= unix.PARENB | unix.PARODD
	case ParityEven:
		termios.Cflag |= unix.PARENB
	case ParityMark:
		termios.Cflag |= unix.PARENB | unix.PARODD | unix.CMSPAR
	case ParitySpace:
		termios.Cflag |= unix.PARENB | unix.CMSPAR
	}
	if config.Parity != ParityNone {
		termios.Iflag |= unix.INPCK
	}

	termios.Ispeed = baudRate
	termios.Ospeed = baudRate

	// Return as soon as any byte arrives, or after VTIME with nothing
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = readTimeoutTenths(config.ReadTimeout)

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("failed to set termios: %w", err)
	}
	return nil
}

// Close releases the descriptor. A failing close(2) is logged at warn
// level, never returned.
func (p *port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if err := unix.Close(p.fd); err != nil {
		p.config.Logger.Warn().Err(err).Str("device", p.device).Msg("closing port failed")
	}
	return nil
}

func (p *port) Read(buf []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}

	n, err := unix.Read(p.fd, buf)
	if n < 0 {
		n = 0
	}
	return n, err
}

func (p *port) Write(data []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}

	n, err := unix.Write(p.fd, data)
	if n < 0 {
		n = 0
	}
	return n, err
}

// BytesAvailable reports the input queue length using TIOCINQ
func (p *port) BytesAvailable() (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}

	n, err := unix.IoctlGetInt(p.fd, unix.TIOCINQ)
	if err != nil {
		if isHangup(err) {
			return -1, nil
		}
		return 0, err
	}
	if n > 0 {
		return n, nil
	}

	// Nothing queued: find out whether more can ever arrive
	fds := []unix.PollFd{{Fd: int32(p.fd), Events: unix.POLLIN}}
	if _, err := unix.Poll(fds, 0); err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, nil
		}
		return 0, err
	}
	if fds[0].Revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 {
		return -1, nil
	}
	return 0, nil
}

// isHangup reports errno values that mean the device went away
func isHangup(err error) bool {
	return errors.Is(err, unix.EIO) || errors.Is(err, unix.ENXIO) || errors.Is(err, unix.ENODEV)
}
