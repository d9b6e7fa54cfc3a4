package serialping

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"
)

// arrival schedules data to show up in the fake input queue.
type arrival struct {
	at   time.Duration
	data []byte
}

// fakePort simulates a device behind a Port. Times are relative to open.
type fakePort struct {
	start    time.Time
	arrivals []arrival
	endless  bool // device streams faster than the exchange can read
	hangup   bool
	hangupAt time.Duration

	writeLimit int // accept at most this many bytes per write, 0 means all
	readChunk  int // return at most this many bytes per read, 0 means all
	writeErr   error
	availErr   error
	readErr    error

	queue      []byte
	written    []byte
	writeCalls int
	polls      int
	readBytes  int
	maxRequest int
	closes     int
	config     Config
}

func (f *fakePort) opener(openErr error) Opener {
	return func(device string, opts ...Option) (Port, error) {
		if openErr != nil {
			return nil, openErr
		}
		f.config = DefaultConfig()
		for _, opt := range opts {
			if err := opt(&f.config); err != nil {
				return nil, err
			}
		}
		f.start = time.Now()
		return f, nil
	}
}

func (f *fakePort) deliver() {
	elapsed := time.Since(f.start)
	for len(f.arrivals) > 0 && f.arrivals[0].at <= elapsed {
		f.queue = append(f.queue, f.arrivals[0].data...)
		f.arrivals = f.arrivals[1:]
	}
}

func (f *fakePort) Write(data []byte) (int, error) {
	f.writeCalls++
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	n := len(data)
	if f.writeLimit > 0 && n > f.writeLimit {
		n = f.writeLimit
	}
	f.written = append(f.written, data[:n]...)
	return n, nil
}

func (f *fakePort) BytesAvailable() (int, error) {
	f.polls++
	if f.availErr != nil {
		return 0, f.availErr
	}
	if f.endless {
		return 4096, nil
	}
	f.deliver()
	if len(f.queue) > 0 {
		return len(f.queue), nil
	}
	if f.hangup && time.Since(f.start) >= f.hangupAt {
		return -1, nil
	}
	return 0, nil
}

func (f *fakePort) Read(buf []byte) (int, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	if len(buf) > f.maxRequest {
		f.maxRequest = len(buf)
	}
	if f.readChunk > 0 && len(buf) > f.readChunk {
		buf = buf[:f.readChunk]
	}
	if f.endless {
		for i := range buf {
			buf[i] = 'x'
		}
		f.readBytes += len(buf)
		return len(buf), nil
	}
	n := copy(buf, f.queue)
	f.queue = f.queue[n:]
	f.readBytes += n
	return n, nil
}

func (f *fakePort) Close() error {
	f.closes++
	return nil
}

func testParams(timeout time.Duration) ConnectionParams {
	p := DefaultParams()
	p.Device = "/dev/ttyFAKE0"
	p.Timeout = timeout
	return p
}

func TestEncodePayload(t *testing.T) {
	tests := []struct {
		name    string
		message string
		newline bool
		want    []byte
	}{
		{"ping with newline", "ping", true, []byte{0x70, 0x69, 0x6E, 0x67, 0x0A}},
		{"ping without newline", "ping", false, []byte("ping")},
		{"multi-byte with newline", "héllo ✓", true, append([]byte("héllo ✓"), 0x0A)},
		{"multi-byte without newline", "日本", false, []byte{0xE6, 0x97, 0xA5, 0xE6, 0x9C, 0xAC}},
		{"empty with newline", "", true, []byte{0x0A}},
		{"empty without newline", "", false, []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodePayload(tt.message, tt.newline)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("EncodePayload(%q, %v) = % X, want % X", tt.message, tt.newline, got, tt.want)
			}
		})
	}
}

func TestExchangeEcho(t *testing.T) {
	dev := &fakePort{arrivals: []arrival{{at: 50 * time.Millisecond, data: []byte("ping\n")}}}
	ex := NewExchange(testParams(1500*time.Millisecond), WithOpener(dev.opener(nil)))

	result, err := ex.Run("ping", true)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.Responded() || result.ByteCount() != 5 {
		t.Fatalf("ByteCount = %d, want 5", result.ByteCount())
	}
	if string(result.Data) != "ping\n" {
		t.Errorf("Data = %q, want %q", result.Data, "ping\n")
	}
	if result.Text() != "ping\n" {
		t.Errorf("Text = %q", result.Text())
	}
	if result.Hex() != "70 69 6E 67 0A" {
		t.Errorf("Hex = %q", result.Hex())
	}
	if result.BytesWritten != 5 || result.PayloadSize != 5 {
		t.Errorf("BytesWritten = %d PayloadSize = %d, want 5 and 5", result.BytesWritten, result.PayloadSize)
	}
	if string(dev.written) != "ping\n" {
		t.Errorf("device received %q", dev.written)
	}
	if result.Stop != StopTimeout {
		t.Errorf("Stop = %v, want timeout", result.Stop)
	}
	if dev.closes != 1 {
		t.Errorf("Close called %d times, want 1", dev.closes)
	}
}

func TestExchangeNoResponse(t *testing.T) {
	dev := &fakePort{}
	ex := NewExchange(testParams(100*time.Millisecond), WithOpener(dev.opener(nil)))

	start := time.Now()
	result, err := ex.Run("ping", true)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Responded() {
		t.Errorf("got %d bytes from a silent device", result.ByteCount())
	}
	if result.Elapsed < 100*time.Millisecond {
		t.Errorf("window closed after %v, before the 100ms timeout", result.Elapsed)
	}
	if elapsed > 300*time.Millisecond {
		t.Errorf("Run took %v for a 100ms window", elapsed)
	}
	if dev.polls < 2 {
		t.Errorf("polled %d times, expected repeated polling", dev.polls)
	}
	if dev.closes != 1 {
		t.Errorf("Close called %d times, want 1", dev.closes)
	}
}

func TestExchangeZeroTimeout(t *testing.T) {
	dev := &fakePort{arrivals: []arrival{{at: 0, data: []byte("late")}}}
	ex := NewExchange(testParams(0), WithOpener(dev.opener(nil)))

	result, err := ex.Run("ping", false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Responded() {
		t.Errorf("got %q with a zero timeout", result.Data)
	}
	if dev.polls != 0 {
		t.Errorf("polled %d times, want 0", dev.polls)
	}
	if result.Stop != StopTimeout {
		t.Errorf("Stop = %v, want timeout", result.Stop)
	}
	if string(dev.written) != "ping" {
		t.Errorf("device received %q, want the payload even with a zero window", dev.written)
	}
}

func TestExchangeBufferFull(t *testing.T) {
	dev := &fakePort{endless: true}
	ex := NewExchange(testParams(2*time.Second), WithOpener(dev.opener(nil)))

	result, err := ex.Run("ping", true)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ByteCount() != ReceiveBufferSize {
		t.Errorf("ByteCount = %d, want %d", result.ByteCount(), ReceiveBufferSize)
	}
	if dev.readBytes != ReceiveBufferSize {
		t.Errorf("read %d bytes from the device, want exactly %d", dev.readBytes, ReceiveBufferSize)
	}
	if result.Stop != StopBufferFull {
		t.Errorf("Stop = %v, want buffer full", result.Stop)
	}
	if result.Elapsed >= time.Second {
		t.Errorf("buffer-full exchange waited %v", result.Elapsed)
	}
}

func TestExchangeBufferFullWithShortReads(t *testing.T) {
	pending := bytes.Repeat([]byte{0xAA}, 1500)
	dev := &fakePort{
		arrivals:  []arrival{{at: 0, data: pending}},
		readChunk: 100,
	}
	ex := NewExchange(testParams(2*time.Second), WithOpener(dev.opener(nil)))

	result, err := ex.Run("dump", true)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ByteCount() != ReceiveBufferSize {
		t.Errorf("ByteCount = %d, want %d", result.ByteCount(), ReceiveBufferSize)
	}
	if dev.readBytes != ReceiveBufferSize {
		t.Errorf("read %d bytes, want %d", dev.readBytes, ReceiveBufferSize)
	}
	if len(dev.queue) != 1500-ReceiveBufferSize {
		t.Errorf("%d bytes left pending, want %d", len(dev.queue), 1500-ReceiveBufferSize)
	}
	if dev.maxRequest > ReceiveBufferSize {
		t.Errorf("a single read asked for %d bytes", dev.maxRequest)
	}
}

func TestExchangeEndOfStream(t *testing.T) {
	tests := []struct {
		name string
		dev  *fakePort
		want []byte
	}{
		{
			name: "after data",
			dev: &fakePort{
				arrivals: []arrival{{at: 0, data: []byte("abc")}},
				hangup:   true,
				hangupAt: 20 * time.Millisecond,
			},
			want: []byte("abc"),
		},
		{
			name: "before any data",
			dev:  &fakePort{hangup: true},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := NewExchange(testParams(5*time.Second), WithOpener(tt.dev.opener(nil)))
			result, err := ex.Run("ping", true)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if !bytes.Equal(result.Data, tt.want) {
				t.Errorf("Data = %q, want %q", result.Data, tt.want)
			}
			if result.Stop != StopEndOfStream {
				t.Errorf("Stop = %v, want end of stream", result.Stop)
			}
			if result.Elapsed > time.Second {
				t.Errorf("waited %v after the device hung up", result.Elapsed)
			}
			if tt.dev.closes != 1 {
				t.Errorf("Close called %d times, want 1", tt.dev.closes)
			}
		})
	}
}

func TestExchangePartialWrite(t *testing.T) {
	dev := &fakePort{writeLimit: 2}
	ex := NewExchange(testParams(20*time.Millisecond), WithOpener(dev.opener(nil)))

	result, err := ex.Run("ping", true)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.BytesWritten != 2 || result.PayloadSize != 5 {
		t.Errorf("BytesWritten = %d PayloadSize = %d, want 2 and 5", result.BytesWritten, result.PayloadSize)
	}
	if dev.writeCalls != 1 {
		t.Errorf("Write called %d times, want exactly 1", dev.writeCalls)
	}
}

func TestExchangeErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name       string
		params     ConnectionParams
		dev        *fakePort
		openErr    error
		want       error
		wantCloses int
	}{
		{"missing device", ConnectionParams{Timeout: time.Second}, &fakePort{}, nil, ErrConfig, 0},
		{"open", testParams(time.Second), &fakePort{}, ErrDeviceNotFound, ErrOpen, 0},
		{"write", testParams(time.Second), &fakePort{writeErr: boom}, nil, ErrWrite, 1},
		{"availability", testParams(time.Second), &fakePort{availErr: boom}, nil, ErrRead, 1},
		{"read", testParams(time.Second), &fakePort{
			arrivals: []arrival{{at: 0, data: []byte("x")}},
			readErr:  boom,
		}, nil, ErrRead, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := NewExchange(tt.params, WithOpener(tt.dev.opener(tt.openErr)))
			result, err := ex.Run("ping", true)
			if result != nil {
				t.Errorf("got result %+v alongside error", result)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if tt.openErr != nil && !errors.Is(err, tt.openErr) {
				t.Errorf("%v lost the underlying open error", err)
			}
			if tt.dev.writeErr != nil && !errors.Is(err, boom) {
				t.Errorf("%v lost the underlying write error", err)
			}
			if tt.dev.closes != tt.wantCloses {
				t.Errorf("Close called %d times, want %d", tt.dev.closes, tt.wantCloses)
			}
		})
	}
}

func TestExchangeConfigErrorBeforeOpen(t *testing.T) {
	opened := false
	open := func(device string, opts ...Option) (Port, error) {
		opened = true
		return &fakePort{}, nil
	}

	params := testParams(time.Second)
	params.BaudRate = 12345
	_, err := NewExchange(params, WithOpener(open)).Run("ping", true)
	if !errors.Is(err, ErrConfig) || !errors.Is(err, ErrInvalidBaudRate) {
		t.Errorf("got %v, want ErrConfig wrapping ErrInvalidBaudRate", err)
	}
	if opened {
		t.Error("port opened despite invalid parameters")
	}
}

func TestExchangePassesParamsToPort(t *testing.T) {
	dev := &fakePort{}
	params := testParams(300 * time.Millisecond)
	params.BaudRate = 9600
	params.Parity = ParityOdd

	if _, err := NewExchange(params, WithOpener(dev.opener(nil))).Run("", false); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if dev.config.BaudRate != 9600 || dev.config.Parity != ParityOdd {
		t.Errorf("port opened with %+v", dev.config)
	}
	if dev.config.ReadTimeout != 300*time.Millisecond {
		t.Errorf("ReadTimeout = %v, want 300ms", dev.config.ReadTimeout)
	}
}

func TestExchangesOnDistinctPortsRunInParallel(t *testing.T) {
	devs := []*fakePort{
		{arrivals: []arrival{{at: 10 * time.Millisecond, data: []byte("one")}}},
		{arrivals: []arrival{{at: 10 * time.Millisecond, data: []byte("two")}}},
	}
	results := make([]*Result, len(devs))
	errs := make([]error, len(devs))

	var wg sync.WaitGroup
	for i, dev := range devs {
		i, dev := i, dev
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = NewExchange(testParams(100*time.Millisecond), WithOpener(dev.opener(nil))).Run("hi", true)
		}()
	}
	wg.Wait()

	for i, want := range []string{"one", "two"} {
		if errs[i] != nil {
			t.Fatalf("exchange %d: %v", i, errs[i])
		}
		if string(results[i].Data) != want {
			t.Errorf("exchange %d got %q, want %q", i, results[i].Data, want)
		}
	}
}
