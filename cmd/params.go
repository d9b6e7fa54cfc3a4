/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	serialping "github.com/allbin/go-serialping"
	"github.com/spf13/viper"
)

// Configuration keys. Each one is also a root flag and a SERIALPING_* variable.
const (
	keyPort     = "port"
	keyBaud     = "baud"
	keyDataBits = "data-bits"
	keyStopBits = "stop-bits"
	keyParity   = "parity"
	keyTimeout  = "timeout"
	keyMessage  = "message"
	keyNewline  = "newline"
	keyList     = "list"
	keyPlain    = "plain"
	keyVerbose  = "verbose"
)

const (
	defaultMessage = "ping"
	defaultTimeout = "1500ms"
)

// setDefaults registers the values used when neither a flag, the
// environment nor a config file provides one.
func setDefaults(v *viper.Viper) {
	p := serialping.DefaultParams()
	v.SetDefault(keyPort, p.Device)
	v.SetDefault(keyBaud, p.BaudRate)
	v.SetDefault(keyDataBits, p.DataBits)
	v.SetDefault(keyStopBits, p.StopBits.String())
	v.SetDefault(keyParity, p.Parity.String())
	v.SetDefault(keyTimeout, defaultTimeout)
	v.SetDefault(keyMessage, defaultMessage)
	v.SetDefault(keyNewline, true)
}

// pingRequest is everything the root command needs for one exchange
type pingRequest struct {
	params  serialping.ConnectionParams
	message string
	newline bool
}

// requestFromConfig builds the exchange request from the merged configuration.
// The result is not validated; the exchange does that before any I/O.
func requestFromConfig(v *viper.Viper) (pingRequest, error) {
	stopBits, err := serialping.ParseStopBits(v.GetString(keyStopBits))
	if err != nil {
		return pingRequest{}, fmt.Errorf("%w: %w", serialping.ErrConfig, err)
	}
	parity, err := serialping.ParseParity(v.GetString(keyParity))
	if err != nil {
		return pingRequest{}, fmt.Errorf("%w: %w", serialping.ErrConfig, err)
	}
	timeout, err := parseTimeout(v.GetString(keyTimeout))
	if err != nil {
		return pingRequest{}, fmt.Errorf("%w: %w", serialping.ErrConfig, err)
	}

	return pingRequest{
		params: serialping.ConnectionParams{
			Device:   v.GetString(keyPort),
			BaudRate: v.GetInt(keyBaud),
			DataBits: v.GetInt(keyDataBits),
			StopBits: stopBits,
			Parity:   parity,
			Timeout:  timeout,
		},
		message: v.GetString(keyMessage),
		newline: v.GetBool(keyNewline),
	}, nil
}

// parseTimeout accepts a Go duration ("1.5s", "250ms") or a bare number of
// milliseconds ("1500").
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("negative timeout %q", s)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative timeout %q", s)
	}
	return d, nil
}
