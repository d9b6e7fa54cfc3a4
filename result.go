package serialping

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
)

// StopReason records which condition ended the read window.
type StopReason int

const (
	StopTimeout     StopReason = iota // window elapsed
	StopBufferFull                    // ReceiveBufferSize bytes collected
	StopEndOfStream                   // device hung up
)

func (r StopReason) String() string {
	switch r {
	case StopTimeout:
		return "timeout"
	case StopBufferFull:
		return "buffer full"
	case StopEndOfStream:
		return "end of stream"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// Result is the outcome of one exchange. A Result with no data is the
// "no response" outcome, which is not an error.
type Result struct {
	Data         []byte        // bytes received, at most ReceiveBufferSize
	PayloadSize  int           // bytes the exchange asked to write
	BytesWritten int           // bytes the OS accepted
	Elapsed      time.Duration // length of the read window
	Stop         StopReason
}

// Responded reports whether the device sent anything back.
func (r *Result) Responded() bool {
	return len(r.Data) > 0
}

// ByteCount is the number of bytes received.
func (r *Result) ByteCount() int {
	return len(r.Data)
}

// Text decodes the response as UTF-8. Invalid sequences become U+FFFD.
func (r *Result) Text() string {
	return DecodeText(r.Data)
}

// Hex renders the response as uppercase hex bytes separated by spaces.
func (r *Result) Hex() string {
	return FormatHex(r.Data)
}

// DecodeText decodes b as UTF-8 without ever failing.
func DecodeText(b []byte) string {
	s, err := unicode.UTF8.NewDecoder().String(string(b))
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return s
}

// FormatHex renders b as "41 0A FF".
func FormatHex(b []byte) string {
	return fmt.Sprintf("% X", b)
}
