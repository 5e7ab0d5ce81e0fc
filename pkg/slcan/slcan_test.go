package slcan

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/roffe/slcanx/pkg/frame"
)

func TestLetter(t *testing.T) {
	tests := []struct {
		name  string
		frame frame.Frame
		want  byte
	}{
		{"standard", frame.Frame{}, 't'},
		{"extended", frame.Frame{Extended: true}, 'T'},
		{"remote", frame.Frame{RTR: true}, 'r'},
		{"remote extended", frame.Frame{RTR: true, Extended: true}, 'R'},
		{"fd", frame.Frame{FD: true}, 'd'},
		{"fd extended", frame.Frame{FD: true, Extended: true}, 'D'},
		{"fd brs", frame.Frame{FD: true, BRS: true}, 'b'},
		{"fd brs extended", frame.Frame{FD: true, BRS: true, Extended: true}, 'B'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Letter(tt.frame); got != tt.want {
				t.Errorf("Letter() = %c, want %c", got, tt.want)
			}
		})
	}
}

func TestEncodeFrame(t *testing.T) {
	tests := []struct {
		name    string
		channel uint8
		frame   frame.Frame
		want    string
	}{
		{"standard", 0, frame.New(0x123, []byte{0xDE, 0xAD}), "0t1232DEAD\r"},
		{"standard empty", 2, frame.New(0x7, nil), "2t0070\r"},
		{"remote", 0, frame.NewRemote(0x123, false), "0r1230\r"},
		{"remote ignores payload", 1, frame.Frame{Identifier: 0x123, RTR: true, Data: []byte{1, 2}}, "1r1232\r"},
		{"extended", 3, frame.NewExtended(0x1ABCDEF0, []byte{0x11, 0x22, 0x33, 0x44}), "3T1ABCDEF0411223344\r"},
		{"fd 12", 1, frame.NewFD(0x10, make([]byte, 12), false, false), "1d0109" + strings.Repeat("00", 12) + "\r"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(EncodeFrame(tt.channel, tt.frame)); got != tt.want {
				t.Errorf("EncodeFrame() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeFDBRSExtended64(t *testing.T) {
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i)
	}
	line := EncodeFrame(0, frame.NewFD(0x1FFFFFFF, data, true, true))
	if line[1] != 'B' {
		t.Fatalf("letter = %c, want B", line[1])
	}
	if got := string(line[2:10]); got != "1FFFFFFF" {
		t.Fatalf("id = %s", got)
	}
	if line[10] != 'F' {
		t.Fatalf("dlc = %c, want F", line[10])
	}
	payload := line[11 : len(line)-1]
	if len(payload) != 128 {
		t.Fatalf("payload hex length = %d, want 128", len(payload))
	}
	if line[len(line)-1] != CR {
		t.Fatal("missing terminator")
	}
}

func TestAppendCommand(t *testing.T) {
	got := AppendCommand([]byte("0O\r"), 2, "S6")
	if string(got) != "0O\r2S6\r" {
		t.Errorf("AppendCommand() = %q", got)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	frames := []frame.Frame{
		frame.NewExtended(0x1ABCDEF0, []byte{0x11, 0x22, 0x33, 0x44}),
		frame.New(0x7FF, []byte{1, 2, 3, 4, 5, 6, 7, 8}),
		frame.NewFD(0x321, make([]byte, 48), false, true),
		frame.NewFD(0x1FFFFFFF, bytes.Repeat([]byte{0xA5}, 64), true, false),
		frame.NewRemote(0x1234, true),
	}
	for ch := uint8(0); ch < MaxChannels; ch++ {
		for _, f := range frames {
			line := EncodeFrame(ch, f)
			msg, err := Decode(line[:len(line)-1])
			if err != nil {
				t.Fatalf("Decode(%q) error: %v", line, err)
			}
			if msg.Kind != KindFrame || msg.Channel != ch {
				t.Fatalf("Decode(%q) = kind %v channel %d", line, msg.Kind, msg.Channel)
			}
			if !msg.Frame.Equal(f) {
				t.Errorf("Decode(%q) = %+v, want %+v", line, msg.Frame, f)
			}
		}
	}
}

func TestDecodeRemote(t *testing.T) {
	msg, err := Decode([]byte("0r1230"))
	if err != nil {
		t.Fatal(err)
	}
	if !msg.Frame.RTR || msg.Frame.Identifier != 0x123 || len(msg.Frame.Data) != 0 {
		t.Errorf("Decode() = %+v", msg.Frame)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		kind    Kind
		channel uint8
		data    []byte
		wantErr error
	}{
		{"no channel digit", "t1232AABB", KindFrame, 0, []byte{0xAA, 0xBB}, nil},
		{"channel 3", "3t1232AABB", KindFrame, 3, []byte{0xAA, 0xBB}, nil},
		{"lowercase hex", "1t1232aabb", KindFrame, 1, []byte{0xAA, 0xBB}, nil},
		{"short payload", "0t1234AABB", KindFrame, 0, []byte{0xAA, 0xBB}, nil},
		{"incomplete byte dropped", "0t1232AAB", KindFrame, 0, []byte{0xAA}, nil},
		{"extra payload ignored", "0t1231AABB", KindFrame, 0, []byte{0xAA}, nil},
		{"bad payload pair skipped", "0t1233AAZZCC", KindFrame, 0, []byte{0xAA, 0xCC}, nil},
		{"only bad pairs", "0t1232ZZ-1", KindFrame, 0, nil, nil},
		{"channel 4 is not a channel", "4t1230", KindResponse, 0, nil, nil},
		{"error", "1E", KindError, 1, nil, nil},
		{"nack", "\a", KindNack, 0, nil, nil},
		{"ack", "2z", KindResponse, 2, nil, nil},
		{"version", "V1013", KindResponse, 0, nil, nil},
		{"only channel", "1", 0, 1, nil, ErrLineTooShort},
		{"short standard", "0t12", 0, 0, nil, ErrLineTooShort},
		{"short extended", "0T1234567", 0, 0, nil, ErrLineTooShort},
		{"bad id", "0t1G30", 0, 0, nil, ErrInvalidID},
		{"bad dlc", "0t123X", 0, 0, nil, ErrInvalidDLC},
		{"empty", "", 0, 0, nil, ErrEmptyLine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.line))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
				}
				var pe *ProtocolError
				if !errors.As(err, &pe) {
					t.Fatalf("Decode() error %T is not a *ProtocolError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if msg.Kind != tt.kind || msg.Channel != tt.channel {
				t.Fatalf("Decode() = kind %v channel %d, want %v %d", msg.Kind, msg.Channel, tt.kind, tt.channel)
			}
			if tt.kind == KindFrame && !bytes.Equal(msg.Frame.Data, tt.data) {
				t.Errorf("Decode() data = %X, want %X", msg.Frame.Data, tt.data)
			}
		})
	}
}

func TestDecodeStatus(t *testing.T) {
	msg, err := Decode([]byte("2E2300A7F"))
	if err != nil {
		t.Fatal(err)
	}
	if msg.Kind != KindError || msg.Status != nil {
		t.Fatalf("short error line: %+v", msg)
	}
	msg, err = Decode([]byte("2E2300A780"))
	if err != nil {
		t.Fatal(err)
	}
	if msg.Status == nil {
		t.Fatal("status not parsed")
	}
	want := Status{State: BusPassive, LastError: 3, FirmwareFlags: 0x00, TxErrors: 0xA7, RxErrors: 0x80}
	if *msg.Status != want {
		t.Errorf("Status = %+v, want %+v", *msg.Status, want)
	}
	if !strings.Contains(msg.Status.String(), "passive") {
		t.Errorf("Status.String() = %q", msg.Status.String())
	}
}

func TestLineBufferAcrossReads(t *testing.T) {
	lb := NewLineBuffer(64)
	lb.Write([]byte("t1230"))
	if line, ok := lb.Next(); ok {
		t.Fatalf("got premature line %q", line)
	}
	lb.Write([]byte("ABCD\r"))
	line, ok := lb.Next()
	if !ok || string(line) != "t1230ABCD" {
		t.Fatalf("Next() = %q, %v", line, ok)
	}
	if line, ok := lb.Next(); ok {
		t.Fatalf("got extra line %q", line)
	}
	if lb.Len() != 0 {
		t.Errorf("Len() = %d, want 0", lb.Len())
	}
}

func TestLineBufferSplitting(t *testing.T) {
	lb := NewLineBuffer(8)
	lb.Write([]byte("\r\r0O\r\a1t12"))
	var lines []string
	for {
		line, ok := lb.Next()
		if !ok {
			break
		}
		lines = append(lines, string(line))
	}
	want := []string{"0O", "\a"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
	if lb.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", lb.Len())
	}
	lb.Write([]byte("30\a"))
	line, ok := lb.Next()
	if !ok || string(line) != "1t1230" {
		t.Fatalf("Next() = %q, %v", line, ok)
	}
	line, ok = lb.Next()
	if !ok || string(line) != "\a" {
		t.Fatalf("Next() = %q, %v", line, ok)
	}
}
