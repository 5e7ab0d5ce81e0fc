package slcan

import (
	"errors"
	"fmt"

	"github.com/roffe/slcanx/pkg/frame"
)

type Kind int

const (
	KindFrame Kind = iota
	KindError
	KindNack
	KindResponse
)

func (k Kind) String() string {
	switch k {
	case KindFrame:
		return "frame"
	case KindError:
		return "error"
	case KindNack:
		return "nack"
	case KindResponse:
		return "response"
	default:
		return "unknown"
	}
}

// Message is one decoded line from the adapter.
type Message struct {
	Channel uint8
	Kind    Kind
	Frame   frame.Frame
	// Status is set for well formed error lines.
	Status *Status
	// Raw is the line without channel digit.
	Raw string
}

var (
	ErrEmptyLine    = errors.New("empty line")
	ErrLineTooShort = errors.New("line too short")
	ErrInvalidID    = errors.New("invalid identifier")
	ErrInvalidDLC   = errors.New("invalid data length code")
)

type ProtocolError struct {
	Line string
	Err  error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Line)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// Decode parses one line with the terminator already stripped. Failures only
// concern this line and are returned as *ProtocolError.
func Decode(line []byte) (Message, error) {
	if len(line) == 0 {
		return Message{}, &ProtocolError{Err: ErrEmptyLine}
	}
	var msg Message
	idx := 0
	if line[0] >= '0' && line[0] < '0'+MaxChannels {
		msg.Channel = line[0] - '0'
		idx++
	}
	if idx >= len(line) {
		return msg, &ProtocolError{Line: string(line), Err: ErrLineTooShort}
	}
	msg.Raw = string(line[idx:])

	switch cmd := line[idx]; cmd {
	case 't', 'T', 'r', 'R', 'd', 'D', 'b', 'B':
		f, err := decodeFrame(cmd, line[idx+1:])
		if err != nil {
			return msg, &ProtocolError{Line: string(line), Err: err}
		}
		msg.Kind = KindFrame
		msg.Frame = f
	case 'E':
		msg.Kind = KindError
		if st, err := ParseStatus(line[idx:]); err == nil {
			msg.Status = &st
		}
	case BELL:
		msg.Kind = KindNack
	default:
		msg.Kind = KindResponse
	}
	return msg, nil
}

func decodeFrame(cmd byte, content []byte) (frame.Frame, error) {
	f := frame.Frame{
		Extended: cmd >= 'A' && cmd <= 'Z',
		RTR:      cmd == 'r' || cmd == 'R',
		FD:       cmd == 'd' || cmd == 'D' || cmd == 'b' || cmd == 'B',
		BRS:      cmd == 'b' || cmd == 'B',
	}

	idLen := 3
	if f.Extended {
		idLen = 8
	}
	if len(content) < idLen+1 {
		return f, ErrLineTooShort
	}
	for _, c := range content[:idLen] {
		n, ok := hexToNybble(c)
		if !ok {
			return f, fmt.Errorf("%w: %q", ErrInvalidID, content[:idLen])
		}
		f.Identifier = f.Identifier<<4 | uint32(n)
	}
	dlc, ok := hexToNybble(content[idLen])
	if !ok {
		return f, fmt.Errorf("%w: %q", ErrInvalidDLC, content[idLen])
	}
	if f.RTR {
		return f, nil
	}

	length := frame.DLCToLength(dlc)
	payload := content[idLen+1:]
	if len(payload) > length*2 {
		payload = payload[:length*2]
	}
	if len(payload)/2 == 0 {
		return f, nil
	}
	f.Data = make([]byte, 0, len(payload)/2)
	for i := 0; i+1 < len(payload); i += 2 {
		hi, ok1 := hexToNybble(payload[i])
		lo, ok2 := hexToNybble(payload[i+1])
		if !ok1 || !ok2 {
			continue
		}
		f.Data = append(f.Data, hi<<4|lo)
	}
	if len(f.Data) == 0 {
		f.Data = nil
	}
	return f, nil
}

func hexToNybble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}
