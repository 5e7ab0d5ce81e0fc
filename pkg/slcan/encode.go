// Package slcan implements the four channel SLCAN line protocol spoken by
// slcanx adapters.
//
// Every line starts with a channel digit 0-3 followed by a command letter and
// is terminated by a carriage return:
//
//	0t1238A1B2C3D4E5F6\r  standard frame on channel 0
//	1B1FFFFFFFF...\r      extended FD frame with bit rate switch on channel 1
//	2S6\r                 set 500 kbit/s on channel 2
package slcan

import (
	"github.com/roffe/slcanx/pkg/frame"
)

const (
	CR   = 0x0D
	BELL = 0x07
)

// MaxChannels is the number of logical buses multiplexed on one line.
const MaxChannels = 4

// Letter returns the command letter used for f.
func Letter(f frame.Frame) byte {
	var c byte
	switch {
	case f.FD && f.BRS:
		c = 'b'
	case f.FD:
		c = 'd'
	case f.RTR:
		c = 'r'
	default:
		c = 't'
	}
	if f.Extended {
		c -= 'a' - 'A'
	}
	return c
}

// AppendFrame appends the line for f on channel ch, including the terminator.
func AppendFrame(dst []byte, ch uint8, f frame.Frame) []byte {
	dst = append(dst, channelDigit(ch), Letter(f))
	if f.Extended {
		id := f.Identifier & frame.MaxExtendedID
		for shift := 28; shift >= 0; shift -= 4 {
			dst = append(dst, nybbleToHex(byte(id>>shift)&0xF))
		}
	} else {
		id := f.Identifier & frame.MaxStandardID
		dst = append(dst, nybbleToHex(byte(id>>8)&0xF), nybbleToHex(byte(id>>4)&0xF), nybbleToHex(byte(id)&0xF))
	}
	dst = append(dst, nybbleToHex(frame.LengthToDLC(len(f.Data))))
	if !f.RTR {
		for _, b := range f.Data {
			dst = append(dst, nybbleToHex(b>>4), nybbleToHex(b&0xF))
		}
	}
	return append(dst, CR)
}

// EncodeFrame returns the line for f on channel ch.
func EncodeFrame(ch uint8, f frame.Frame) []byte {
	return AppendFrame(make([]byte, 0, 15+2*len(f.Data)), ch, f)
}

// AppendCommand appends a configuration command verbatim, prefixed with the
// channel digit and terminated with CR.
func AppendCommand(dst []byte, ch uint8, text string) []byte {
	dst = append(dst, channelDigit(ch))
	dst = append(dst, text...)
	return append(dst, CR)
}

// channelDigit expects ch below MaxChannels, callers validate it.
func channelDigit(ch uint8) byte {
	return '0' + ch
}

func nybbleToHex(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'A' + (n - 10)
}
