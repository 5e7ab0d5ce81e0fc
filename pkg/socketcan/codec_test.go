package socketcan

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/roffe/slcanx/pkg/frame"
)

func rawFrame(size int, id uint32, flags byte, data []byte) []byte {
	b := make([]byte, size)
	binary.NativeEndian.PutUint32(b[0:4], id)
	b[4] = byte(len(data))
	b[5] = flags
	copy(b[8:], data)
	return b
}

func TestUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		want    frame.Frame
		wantErr error
	}{
		{
			name: "classic standard",
			in:   rawFrame(MTU, 0x123, 0, []byte{1, 2, 3}),
			want: frame.New(0x123, []byte{1, 2, 3}),
		},
		{
			name: "classic extended",
			in:   rawFrame(MTU, 0x1ABCDEF0|flagEFF, 0, []byte{0xAA}),
			want: frame.NewExtended(0x1ABCDEF0, []byte{0xAA}),
		},
		{
			name: "classic remote",
			in:   rawFrame(MTU, 0x7FF|flagRTR, 0, nil),
			want: frame.NewRemote(0x7FF, false),
		},
		{
			name: "fd brs",
			in:   rawFrame(FDMTU, 0x100, fdFDF|fdBRS, bytes.Repeat([]byte{0x55}, 12)),
			want: frame.NewFD(0x100, bytes.Repeat([]byte{0x55}, 12), false, true),
		},
		{
			name: "fd without brs",
			in:   rawFrame(FDMTU, 0x100|flagEFF, fdFDF, []byte{1}),
			want: frame.NewFD(0x100, []byte{1}, true, false),
		},
		{
			name:    "error frame",
			in:      rawFrame(MTU, flagERR|0x04, 0, make([]byte, 8)),
			wantErr: ErrErrorFrame,
		},
		{
			name:    "short read",
			in:      make([]byte, 10),
			wantErr: ErrFrameSize,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unmarshal(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Unmarshal() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("Unmarshal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUnmarshalClampsLength(t *testing.T) {
	b := rawFrame(MTU, 0x1, 0, make([]byte, 8))
	b[4] = 15
	f, err := Unmarshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if f.Length() != 8 {
		t.Errorf("length = %d, want 8", f.Length())
	}
}

func TestMarshalFD(t *testing.T) {
	f := frame.NewFD(0x1FFFFFFF, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, true, true)
	b := MarshalFD(f)
	if id := binary.NativeEndian.Uint32(b[0:4]); id != 0x1FFFFFFF|flagEFF {
		t.Errorf("can_id = %#x", id)
	}
	if b[4] != 12 {
		t.Errorf("len = %d, want padded 12", b[4])
	}
	if b[5] != fdFDF|fdBRS {
		t.Errorf("flags = %#x", b[5])
	}
	if !bytes.Equal(b[8:20], []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 0, 0, 0}) {
		t.Errorf("data = % X", b[8:20])
	}

	back, err := Unmarshal(b[:])
	if err != nil {
		t.Fatal(err)
	}
	if back.Identifier != f.Identifier || !back.Extended || !back.FD || !back.BRS {
		t.Errorf("round trip = %s", back)
	}
}

func TestMarshalFDStandardMasksID(t *testing.T) {
	b := MarshalFD(frame.Frame{Identifier: 0xFFF, FD: true})
	if id := binary.NativeEndian.Uint32(b[0:4]); id != 0x7FF {
		t.Errorf("can_id = %#x, want 0x7ff", id)
	}
	if b[5] != fdFDF {
		t.Errorf("flags = %#x, want FDF only", b[5])
	}
}
