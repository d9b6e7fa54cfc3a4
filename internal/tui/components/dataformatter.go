package components

import (
	"fmt"
	"strings"
	"time"

	serialping "github.com/allbin/go-serialping"
	"github.com/allbin/go-serialping/internal/tui/styles"
)

// NoResponseText is printed when the device stayed silent
const NoResponseText = "No response received within timeout."

// FormatOpening renders the line printed before the port is opened
func FormatOpening(params serialping.ConnectionParams) string {
	return fmt.Sprintf("%s Opening %s...", styles.InfoStyle.Render("⚡"), params)
}

// FormatPayload renders the outgoing bytes as decimal values, e.g.
// "-> [112 105 110 103 10] (5 bytes)".
func FormatPayload(payload []byte) string {
	return fmt.Sprintf("%s %v (%d bytes)", styles.TXStyle.Render("->"), payload, len(payload))
}

// FormatWrite reports how much of the payload the OS accepted and how long
// the exchange listened.
func FormatWrite(result *serialping.Result, window time.Duration) string {
	written := styles.SuccessStyle.Render(fmt.Sprintf("Wrote %d bytes", result.BytesWritten))
	if result.BytesWritten < result.PayloadSize {
		written = styles.WarningStyle.Render(fmt.Sprintf("Wrote %d of %d bytes", result.BytesWritten, result.PayloadSize))
	}
	return fmt.Sprintf("%s, listened %v of up to %d ms (%s)",
		written,
		result.Elapsed.Round(time.Millisecond),
		window.Milliseconds(),
		result.Stop)
}

// FormatResult renders the response as text and hex, or the no-response
// line. The text is printed as decoded, so a trailing newline from the
// device ends the line.
func FormatResult(result *serialping.Result) string {
	if !result.Responded() {
		return styles.SubtleStyle.Render(NoResponseText) + "\n"
	}

	var b strings.Builder
	text := result.Text()
	fmt.Fprintf(&b, "%s %d bytes: %s", styles.RXStyle.Render("<-"), result.ByteCount(), text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "   %s %s\n", styles.HexLabelStyle.Render("HEX:"), result.Hex())
	return b.String()
}
