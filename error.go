package slcanx

import (
	"errors"
)

var (
	// ErrConnection is returned when the port can not be opened or configured.
	ErrConnection = errors.New("connection error")
	// ErrInvalidArgument is returned synchronously for values the adapter can
	// not represent, nothing is sent to the device.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDisconnected is returned once the worker has stopped.
	ErrDisconnected = errors.New("device disconnected")
	ErrDroppedFrame = errors.New("subscriber queue full, frame dropped")
)

// DeviceError is a fatal failure reported by the worker before it exits.
type DeviceError struct {
	Message string
}

func (e *DeviceError) Error() string {
	return "device error: " + e.Message
}
