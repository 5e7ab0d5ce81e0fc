package gateway

import (
	"testing"

	"github.com/roffe/slcanx/pkg/frame"
)

func TestUpgrade(t *testing.T) {
	tests := []struct {
		name string
		in   frame.Frame
		want frame.Frame
	}{
		{
			name: "classic",
			in:   frame.New(0x123, []byte{1, 2, 3}),
			want: frame.NewFD(0x123, []byte{1, 2, 3}, false, true),
		},
		{
			name: "classic extended",
			in:   frame.NewExtended(0x1ABCDEF0, []byte{0xFF}),
			want: frame.NewFD(0x1ABCDEF0, []byte{0xFF}, true, true),
		},
		{
			name: "fd without brs",
			in:   frame.NewFD(0x10, make([]byte, 64), false, false),
			want: frame.NewFD(0x10, make([]byte, 64), false, true),
		},
		{
			name: "fd brs unchanged",
			in:   frame.NewFD(0x10, []byte{9}, true, true),
			want: frame.NewFD(0x10, []byte{9}, true, true),
		},
		{
			name: "remote",
			in:   frame.Frame{Identifier: 0x7FF, RTR: true, Data: []byte{0, 0}},
			want: frame.NewFD(0x7FF, nil, false, true),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Upgrade(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("Upgrade() = %s, want %s", got, tt.want)
			}
			if err := got.Validate(); err != nil {
				t.Errorf("Upgrade() produced invalid frame: %v", err)
			}
		})
	}
}
