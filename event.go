package slcanx

import (
	"fmt"
	"time"

	"github.com/roffe/slcanx/pkg/frame"
)

type commandType int

const (
	commandFrame commandType = iota
	commandRaw
	commandShutdown
)

// command is consumed exactly once by the worker.
type command struct {
	typ     commandType
	channel uint8
	frame   frame.Frame
	text    string
}

type eventType int

const (
	eventFrame eventType = iota
	eventDeviceError
)

func (et eventType) String() string {
	switch et {
	case eventFrame:
		return "FRAME"
	case eventDeviceError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// event is produced by the worker and consumed by the dispatcher.
type event struct {
	typ     eventType
	channel uint8
	frame   frame.Frame
	time    time.Time
	details string
}

func (e event) String() string {
	if e.typ == eventFrame {
		return fmt.Sprintf("[%s] %d: %s", e.typ, e.channel, e.frame.String())
	}
	return fmt.Sprintf("[%s] %s", e.typ, e.details)
}

// Message is a frame received on one channel.
type Message struct {
	Channel uint8
	Frame   frame.Frame
	Time    time.Time
}

func (m *Message) String() string {
	return fmt.Sprintf("%d || %s", m.Channel, m.Frame.String())
}
