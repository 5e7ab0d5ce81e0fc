//go:build !linux

package socketcan

import (
	"time"

	"github.com/roffe/slcanx/pkg/frame"
)

type Conn struct{}

func Dial(iface string) (*Conn, error) {
	return nil, ErrUnsupported
}

func (c *Conn) Name() string                      { return "" }
func (c *Conn) ReadFrame() (frame.Frame, error)   { return frame.Frame{}, ErrUnsupported }
func (c *Conn) WriteFrame(frame.Frame) error      { return ErrUnsupported }
func (c *Conn) SetReadDeadline(t time.Time) error { return ErrUnsupported }
func (c *Conn) Close() error                      { return nil }
