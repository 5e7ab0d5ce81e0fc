package frame

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

const (
	MaxStandardID = 0x7FF
	MaxExtendedID = 0x1FFFFFFF

	// MaxClassicLength is the payload limit of a classical (non FD) frame.
	MaxClassicLength = 8
	// MaxLength is the payload limit of a CAN-FD frame.
	MaxLength = 64
)

var ErrInvalidFrame = errors.New("invalid frame")

// Frame is a CAN or CAN-FD frame. It is passed by value, the constructors copy
// the payload so the caller can reuse its slice.
type Frame struct {
	Identifier uint32
	Data       []byte
	Extended   bool
	RTR        bool
	FD         bool
	BRS        bool
}

// New creates a classical frame with an 11 bit identifier.
func New(identifier uint32, data []byte) Frame {
	return Frame{
		Identifier: identifier,
		Data:       copyData(data),
	}
}

// NewExtended creates a classical frame with a 29 bit identifier.
func NewExtended(identifier uint32, data []byte) Frame {
	f := New(identifier, data)
	f.Extended = true
	return f
}

// NewFD creates a CAN-FD frame, brs enables the faster data phase.
func NewFD(identifier uint32, data []byte, extended, brs bool) Frame {
	f := New(identifier, data)
	f.Extended = extended
	f.FD = true
	f.BRS = brs
	return f
}

// NewRemote creates a remote transmission request.
func NewRemote(identifier uint32, extended bool) Frame {
	return Frame{
		Identifier: identifier,
		Extended:   extended,
		RTR:        true,
	}
}

func copyData(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}
	d := make([]byte, len(data))
	copy(d, data)
	return d
}

// Length returns the payload length.
func (f Frame) Length() int {
	return len(f.Data)
}

// DLC returns the data length code for the payload.
func (f Frame) DLC() uint8 {
	return LengthToDLC(len(f.Data))
}

// Equal reports whether two frames carry the same identifier, flags and payload.
func (f Frame) Equal(o Frame) bool {
	if f.Identifier != o.Identifier || f.Extended != o.Extended || f.RTR != o.RTR || f.FD != o.FD || f.BRS != o.BRS {
		return false
	}
	if len(f.Data) != len(o.Data) {
		return false
	}
	for i := range f.Data {
		if f.Data[i] != o.Data[i] {
			return false
		}
	}
	return true
}

// Validate checks the frame against what can be put on the bus.
func (f Frame) Validate() error {
	switch {
	case f.Extended && f.Identifier > MaxExtendedID:
		return fmt.Errorf("%w: extended identifier 0x%X out of range", ErrInvalidFrame, f.Identifier)
	case !f.Extended && f.Identifier > MaxStandardID:
		return fmt.Errorf("%w: standard identifier 0x%X out of range", ErrInvalidFrame, f.Identifier)
	case f.BRS && !f.FD:
		return fmt.Errorf("%w: bit rate switch requires FD", ErrInvalidFrame)
	case f.RTR && f.FD:
		return fmt.Errorf("%w: FD frames can not be remote", ErrInvalidFrame)
	case !f.FD && len(f.Data) > MaxClassicLength:
		return fmt.Errorf("%w: %d bytes in a classical frame", ErrInvalidFrame, len(f.Data))
	case !ValidLength(len(f.Data)):
		return fmt.Errorf("%w: payload length %d has no DLC", ErrInvalidFrame, len(f.Data))
	}
	return nil
}

func (f Frame) flags() string {
	var out strings.Builder
	switch {
	case f.Extended:
		out.WriteByte('X')
	default:
		out.WriteByte('-')
	}
	switch {
	case f.BRS:
		out.WriteString("FB")
	case f.FD:
		out.WriteString("F-")
	case f.RTR:
		out.WriteString("R-")
	default:
		out.WriteString("--")
	}
	return out.String()
}

func (f Frame) id() string {
	if f.Extended {
		return fmt.Sprintf("0x%08X", f.Identifier)
	}
	return fmt.Sprintf("0x%03X", f.Identifier)
}

func (f Frame) hexView() string {
	var hexView strings.Builder
	for i, b := range f.Data {
		hexView.WriteString(fmt.Sprintf("%02X", b))
		if i != len(f.Data)-1 {
			hexView.WriteString(" ")
		}
	}
	return hexView.String()
}

var (
	yellow = color.New(color.FgYellow).SprintfFunc()
	red    = color.New(color.FgRed).SprintfFunc()
	green  = color.New(color.FgGreen).SprintfFunc()
)

func (f Frame) String() string {
	var out strings.Builder
	out.WriteString(fmt.Sprintf("%-10s", f.id()) + " || ")
	out.WriteString(fmt.Sprintf("%2s", strconv.Itoa(len(f.Data))) + " || ")
	out.WriteString(f.flags() + " || ")
	out.WriteString(fmt.Sprintf("%-23s", f.hexView()))
	out.WriteString(" || ")
	out.WriteString(onlyPrintable(f.Data))
	return out.String()
}

func (f Frame) ColorString() string {
	var out strings.Builder
	out.WriteString(green("%-10s", f.id()) + " || ")
	out.WriteString(fmt.Sprintf("%2s", strconv.Itoa(len(f.Data))) + " || ")
	out.WriteString(red("%s", f.flags()) + " || ")
	out.WriteString(fmt.Sprintf("%-23s", f.hexView()))
	out.WriteString(" || ")
	out.WriteString(yellow("%s", onlyPrintable(f.Data)))
	return out.String()
}

func onlyPrintable(data []byte) string {
	var out strings.Builder
	for _, b := range data {
		if b < 32 || b > 126 {
			out.WriteString("·")
		} else {
			out.WriteByte(b)
		}
	}
	return out.String()
}
