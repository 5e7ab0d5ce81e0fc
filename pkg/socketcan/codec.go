// Package socketcan is a minimal Linux SocketCAN raw socket with CAN FD
// frames enabled.
package socketcan

import (
	"encoding/binary"
	"errors"
	"fmt"
	"runtime"

	"github.com/roffe/slcanx/pkg/frame"
)

const (
	// MTU of a classical struct can_frame.
	MTU = 16
	// FDMTU of a struct canfd_frame.
	FDMTU = 72

	flagEFF = 0x80000000
	flagRTR = 0x40000000
	flagERR = 0x20000000

	maskSFF = 0x000007FF
	maskEFF = 0x1FFFFFFF

	fdBRS = 0x01
	fdFDF = 0x04
)

var (
	ErrErrorFrame  = errors.New("socketcan: error frame")
	ErrFrameSize   = errors.New("socketcan: unexpected frame size")
	ErrUnsupported = fmt.Errorf("socketcan on %s: %w", runtime.GOOS, errors.ErrUnsupported)
)

// Unmarshal decodes a classical or FD frame as read from a raw socket.
func Unmarshal(b []byte) (frame.Frame, error) {
	if len(b) != MTU && len(b) != FDMTU {
		return frame.Frame{}, fmt.Errorf("%w: %d bytes", ErrFrameSize, len(b))
	}
	id := binary.NativeEndian.Uint32(b[0:4])
	if id&flagERR != 0 {
		return frame.Frame{}, ErrErrorFrame
	}
	f := frame.Frame{
		Extended: id&flagEFF != 0,
		FD:       len(b) == FDMTU,
	}
	if f.Extended {
		f.Identifier = id & maskEFF
	} else {
		f.Identifier = id & maskSFF
	}
	if !f.FD && id&flagRTR != 0 {
		f.RTR = true
		return f, nil
	}
	if f.FD {
		f.BRS = b[5]&fdBRS != 0
	}

	length := int(b[4])
	if max := len(b) - 8; length > max {
		length = max
	}
	if length > 0 {
		f.Data = append([]byte(nil), b[8:8+length]...)
	}
	return f, nil
}

// MarshalFD encodes f as a struct canfd_frame. The payload is zero padded to
// the next valid FD length.
func MarshalFD(f frame.Frame) [FDMTU]byte {
	var b [FDMTU]byte
	id := f.Identifier & maskSFF
	if f.Extended {
		id = f.Identifier&maskEFF | flagEFF
	}
	binary.NativeEndian.PutUint32(b[0:4], id)
	n := copy(b[8:], f.Data)
	b[4] = byte(frame.PaddedLength(n))
	b[5] = fdFDF
	if f.BRS {
		b[5] |= fdBRS
	}
	return b
}
