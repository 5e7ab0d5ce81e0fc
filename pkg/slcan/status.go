package slcan

import (
	"fmt"
)

// BusState as reported in the first field of an error line.
type BusState uint8

const (
	BusActive BusState = iota
	BusWarning
	BusPassive
	BusOff
)

func (s BusState) String() string {
	switch s {
	case BusActive:
		return "active"
	case BusWarning:
		return "warning"
	case BusPassive:
		return "passive"
	case BusOff:
		return "bus-off"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Status is the content of an adapter error line, Eslffttrr:
//
//	s  bus state
//	l  last protocol error
//	ff firmware error flags
//	tt transmit error counter
//	rr receive error counter
type Status struct {
	State         BusState
	LastError     uint8
	FirmwareFlags uint8
	TxErrors      uint8
	RxErrors      uint8
}

const statusLength = 9

// ParseStatus decodes an error line starting with 'E'.
func ParseStatus(line []byte) (Status, error) {
	if len(line) < statusLength || line[0] != 'E' {
		return Status{}, fmt.Errorf("%w: %q", ErrLineTooShort, line)
	}
	var v [8]byte
	for i, c := range line[1:statusLength] {
		n, ok := hexToNybble(c)
		if !ok {
			return Status{}, fmt.Errorf("invalid status digit %q", c)
		}
		v[i] = n
	}
	return Status{
		State:         BusState(v[0]),
		LastError:     v[1],
		FirmwareFlags: v[2]<<4 | v[3],
		TxErrors:      v[4]<<4 | v[5],
		RxErrors:      v[6]<<4 | v[7],
	}, nil
}

func (s Status) String() string {
	return fmt.Sprintf("bus %s, last error %d, flags %02X, tx errors %d, rx errors %d", s.State, s.LastError, s.FirmwareFlags, s.TxErrors, s.RxErrors)
}
