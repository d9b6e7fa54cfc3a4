// Package serialping sends a short message to a serial device and collects
// whatever the device answers within a bounded time window.
//
// It is meant for checking that a microcontroller or serial peripheral is
// alive and echoing: one write, one read window, one result.
//
// # Basic Usage
//
//	params := serialping.DefaultParams()
//	params.Device = "/dev/ttyACM0"
//	params.Timeout = 1500 * time.Millisecond
//
//	result, err := serialping.NewExchange(params).Run("ping", true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Responded() {
//	    fmt.Println("no response")
//	    return
//	}
//	fmt.Printf("%d bytes: %s\nHEX: %s\n", result.ByteCount(), result.Text(), result.Hex())
//
// # Read Window
//
// After the write, the exchange polls the input queue every 10ms and stops
// on the first of:
//
//   - the timeout has elapsed (Timeout 0 returns at once),
//   - 1024 bytes have been collected; anything further stays unread,
//   - the device hung up.
//
// None of these is an error. A device that stays silent yields a Result
// whose Responded method reports false.
//
// # Opening Ports
//
// Open configures the line (raw mode, baud, data bits, stop bits, parity)
// and then waits SettleDelay (200ms) for boards that reset on open:
//
//	port, err := serialping.Open("/dev/ttyUSB0",
//	    serialping.WithBaudRate(9600),
//	    serialping.WithParity(serialping.ParityEven),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
// # Port Discovery
//
//	ports, err := serialping.ListPorts()
//	for _, p := range ports {
//	    fmt.Printf("%s: %s\n", p.Path, p.Description)
//	}
//
// # Error Handling
//
// Exchange errors wrap one of ErrConfig, ErrOpen, ErrWrite or ErrRead, and
// keep the underlying cause:
//
//	if errors.Is(err, serialping.ErrOpen) && errors.Is(err, serialping.ErrPermissionDenied) {
//	    // add the user to the dialout group
//	}
//
// # Platform Support
//
// Port I/O uses Linux termios ioctls.
package serialping
