package serialping

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	// ReceiveBufferSize caps a response. Bytes beyond it are left unread.
	ReceiveBufferSize = 1024

	// PollInterval is the pause between availability checks while the
	// input queue is empty.
	PollInterval = 10 * time.Millisecond
)

// Opener opens a port. Open is the default; tests substitute fakes.
type Opener func(device string, opts ...Option) (Port, error)

// ExchangeOption configures an Exchange
type ExchangeOption func(*Exchange)

// WithOpener replaces the function used to open the port.
func WithOpener(open Opener) ExchangeOption {
	return func(e *Exchange) {
		e.open = open
	}
}

// WithExchangeLogger sets the logger for the exchange and the port it opens.
func WithExchangeLogger(logger zerolog.Logger) ExchangeOption {
	return func(e *Exchange) {
		e.logger = logger
	}
}

// Exchange performs one write followed by one bounded read window.
type Exchange struct {
	params ConnectionParams
	open   Opener
	logger zerolog.Logger
}

// NewExchange prepares an exchange over the connection described by params.
func NewExchange(params ConnectionParams, opts ...ExchangeOption) *Exchange {
	e := &Exchange{
		params: params,
		open:   Open,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Params returns the connection parameters the exchange was built with.
func (e *Exchange) Params() ConnectionParams {
	return e.params
}

// EncodePayload returns the bytes sent for message. The line feed, when
// requested, is appended after UTF-8 encoding.
func EncodePayload(message string, newline bool) []byte {
	payload := make([]byte, 0, len(message)+1)
	payload = append(payload, message...)
	if newline {
		payload = append(payload, '\n')
	}
	return payload
}

// Run opens the port, writes the encoded message once and collects the
// response until the timeout expires, the receive buffer fills or the
// device hangs up. The port is closed before Run returns on every path.
//
// Errors wrap exactly one of ErrConfig, ErrOpen, ErrWrite or ErrRead.
// Silence from the device is not an error: the Result simply has no data.
func (e *Exchange) Run(message string, newline bool) (*Result, error) {
	if err := e.params.Validate(); err != nil {
		return nil, err
	}

	payload := EncodePayload(message, newline)
	log := e.logger.With().Str("device", e.params.Device).Logger()

	opts := append(e.params.Options(), WithLogger(e.logger))
	port, err := e.open(e.params.Device, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer port.Close()

	log.Debug().Int("bytes", len(payload)).Msg("writing payload")
	written, err := port.Write(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if written < len(payload) {
		// The short count is reported, not retried
		log.Warn().
			Int("written", written).
			Int("requested", len(payload)).
			Msg("partial write")
	}

	result := &Result{
		PayloadSize:  len(payload),
		BytesWritten: written,
	}
	if err := e.receive(port, result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	log.Debug().
		Int("received", len(result.Data)).
		Dur("elapsed", result.Elapsed).
		Stringer("stop", result.Stop).
		Msg("exchange complete")
	return result, nil
}

// receive polls port until one of the three stop conditions holds and
// stores what it collected in result.
func (e *Exchange) receive(port Port, result *Result) error {
	var buf [ReceiveBufferSize]byte
	total := 0
	start := time.Now()

	for {
		if time.Since(start) >= e.params.Timeout {
			result.Stop = StopTimeout
			break
		}
		if total >= len(buf) {
			result.Stop = StopBufferFull
			break
		}

		available, err := port.BytesAvailable()
		if err != nil {
			return err
		}
		if available < 0 {
			result.Stop = StopEndOfStream
			break
		}
		if available == 0 {
			time.Sleep(PollInterval)
			continue
		}

		want := min(available, len(buf)-total)
		n, err := port.Read(buf[total : total+want])
		if n > 0 {
			total += n
		}
		if err != nil {
			return err
		}
		e.logger.Debug().Int("read", n).Int("total", total).Msg("received bytes")
	}

	result.Elapsed = time.Since(start)
	if total > 0 {
		result.Data = append([]byte(nil), buf[:total]...)
	}
	return nil
}
