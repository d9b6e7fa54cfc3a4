package serialping

import "errors"

// Error classes returned by an exchange. Each failure is wrapped in exactly
// one of these so callers can pick an exit status with errors.Is.
var (
	ErrConfig = errors.New("invalid connection parameters")
	ErrOpen   = errors.New("open failed")
	ErrWrite  = errors.New("write failed")
	ErrRead   = errors.New("read failed")
)

// Predefined error types for robust error handling
var (
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied accessing serial device")
	ErrDeviceInUse      = errors.New("serial device already in use")
	ErrInvalidBaudRate  = errors.New("invalid baud rate")
	ErrInvalidConfig    = errors.New("invalid serial configuration")
	ErrMissingDevice    = errors.New("no serial device specified")
	ErrPortClosed       = errors.New("serial port is closed")
)
