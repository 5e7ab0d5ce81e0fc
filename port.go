package slcanx

import (
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"strings"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Port is the byte pipe to the adapter. Read must return (0, nil) when the
// read timeout expires without data.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

func openSerial(cfg *Config) (Port, error) {
	portName := cfg.Port
	if runtime.GOOS == "windows" {
		portName = strings.ToUpper(portName)
	}
	mode := &serial.Mode{
		BaudRate: cfg.PortBaudrate,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open com port %q: %v", ErrConnection, portName, err)
	}
	if err := p.SetReadTimeout(cfg.ReadTimeout); err != nil {
		p.Close()
		return nil, fmt.Errorf("%w: failed to set read timeout: %v", ErrConnection, err)
	}
	// CDC implementations often hold back data until DTR is asserted
	if err := p.SetDTR(true); err != nil {
		cfg.OnMessage(fmt.Sprintf("failed to set DTR: %v", err))
	}
	p.ResetOutputBuffer()
	p.ResetInputBuffer()
	return p, nil
}

// ListPorts returns the serial ports present on the system.
func ListPorts() ([]*enumerator.PortDetails, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}
	if len(ports) == 0 {
		return nil, errors.New("no serial ports found")
	}
	return ports, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
