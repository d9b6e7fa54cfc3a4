package components

import (
	"strings"
	"testing"
	"time"

	serialping "github.com/allbin/go-serialping"
)

func TestFormatResult(t *testing.T) {
	tests := []struct {
		name     string
		result   *serialping.Result
		contains []string
		lines    int
	}{
		{
			name:     "echo",
			result:   &serialping.Result{Data: []byte("ping\n")},
			contains: []string{"<-", "5 bytes: ping\n", "HEX: 70 69 6E 67 0A"},
			lines:    2,
		},
		{
			name:     "no trailing newline",
			result:   &serialping.Result{Data: []byte{0x41, 0x0A, 0xFF}},
			contains: []string{"3 bytes: A\n\uFFFD\n", "HEX: 41 0A FF"},
			lines:    3,
		},
		{
			name:     "no response",
			result:   &serialping.Result{},
			contains: []string{NoResponseText},
			lines:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatResult(tt.result)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("FormatResult() = %q, missing %q", got, want)
				}
			}
			if n := strings.Count(got, "\n"); n != tt.lines {
				t.Errorf("FormatResult() has %d lines, want %d: %q", n, tt.lines, got)
			}
		})
	}
}

func TestFormatPayload(t *testing.T) {
	got := FormatPayload([]byte("ping\n"))
	if !strings.Contains(got, "[112 105 110 103 10] (5 bytes)") {
		t.Errorf("FormatPayload() = %q", got)
	}
}

func TestFormatWrite(t *testing.T) {
	full := &serialping.Result{PayloadSize: 5, BytesWritten: 5, Elapsed: 1500 * time.Millisecond, Stop: serialping.StopTimeout}
	got := FormatWrite(full, 1500*time.Millisecond)
	for _, want := range []string{"Wrote 5 bytes", "1500 ms", "timeout"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatWrite() = %q, missing %q", got, want)
		}
	}

	partial := &serialping.Result{PayloadSize: 5, BytesWritten: 2, Stop: serialping.StopEndOfStream}
	got = FormatWrite(partial, time.Second)
	for _, want := range []string{"Wrote 2 of 5 bytes", "end of stream"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatWrite() = %q, missing %q", got, want)
		}
	}
}

func TestFormatOpening(t *testing.T) {
	params := serialping.DefaultParams()
	got := FormatOpening(params)
	if !strings.Contains(got, "Opening /dev/ttyACM0 @ 115200 8N1...") {
		t.Errorf("FormatOpening() = %q", got)
	}
}
