/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"

	serialping "github.com/allbin/go-serialping"
)

// Process exit statuses
const (
	ExitOK     = 0
	ExitIO     = 1 // write or read failed mid-exchange
	ExitUsage  = 2 // flags or arguments could not be parsed
	ExitConfig = 3 // parameters parsed but invalid, e.g. no device
	ExitOpen   = 4 // device missing, busy or not permitted
)

// usageError marks errors from flag and argument parsing
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// exitCode maps an error returned by a command to the process exit status
func exitCode(err error) int {
	var usage usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &usage):
		return ExitUsage
	case errors.Is(err, serialping.ErrConfig):
		return ExitConfig
	case errors.Is(err, serialping.ErrOpen):
		return ExitOpen
	default:
		return ExitIO
	}
}

// errorHint returns advice printed below an error, if any applies
func errorHint(err error) string {
	switch {
	case errors.Is(err, serialping.ErrMissingDevice):
		return "--port is required (e.g., --port=/dev/ttyACM0). Use --list to see available ports."
	case errors.Is(err, serialping.ErrPermissionDenied):
		return "Check that you have permission to use the port (dialout group)."
	case errors.Is(err, serialping.ErrDeviceNotFound):
		return "Check that the device exists. Use --list to see available ports."
	case errors.Is(err, serialping.ErrDeviceInUse):
		return "Another program has the port open."
	default:
		return ""
	}
}
