package socketcan

import (
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/roffe/slcanx/pkg/frame"
)

// Conn is a CAN_RAW socket bound to one interface. The descriptor is non
// blocking and handed to the runtime poller, so a blocked ReadFrame parks
// only its goroutine and Close unblocks it.
type Conn struct {
	iface string
	f     *os.File
	buf   [FDMTU]byte
}

// Dial opens a raw socket on iface with FD frames enabled and local loopback
// disabled.
func Dial(iface string) (*Conn, error) {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, fmt.Errorf("socketcan: %w", err)
	}
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("socketcan: socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_CAN_RAW, unix.CAN_RAW_FD_FRAMES, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("socketcan: enable fd frames on %s: %w", iface, err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_CAN_RAW, unix.CAN_RAW_LOOPBACK, 0); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("socketcan: disable loopback on %s: %w", iface, err)
	}
	if err := unix.Bind(fd, &unix.SockaddrCAN{Ifindex: ifi.Index}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("socketcan: bind %s: %w", iface, err)
	}
	return &Conn{
		iface: iface,
		f:     os.NewFile(uintptr(fd), iface),
	}, nil
}

func (c *Conn) Name() string {
	return c.iface
}

// ReadFrame blocks until a frame arrives. Error frames are reported as
// ErrErrorFrame and can be skipped.
func (c *Conn) ReadFrame() (frame.Frame, error) {
	n, err := c.f.Read(c.buf[:])
	if err != nil {
		return frame.Frame{}, fmt.Errorf("socketcan: read %s: %w", c.iface, err)
	}
	return Unmarshal(c.buf[:n])
}

// WriteFrame always sends an FD frame.
func (c *Conn) WriteFrame(f frame.Frame) error {
	b := MarshalFD(f)
	if _, err := c.f.Write(b[:]); err != nil {
		return fmt.Errorf("socketcan: write %s: %w", c.iface, err)
	}
	return nil
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.f.SetReadDeadline(t)
}

func (c *Conn) Close() error {
	return c.f.Close()
}
