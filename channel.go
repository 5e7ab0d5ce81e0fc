package slcanx

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/roffe/slcanx/pkg/frame"
)

// Channel is one CAN bus of the adapter. All methods only enqueue work for
// the worker, none of them wait for the adapter to acknowledge.
type Channel struct {
	id uint8
	d  *Device
}

var bitrateCommands = map[int]string{
	10000:   "S0",
	20000:   "S1",
	50000:   "S2",
	100000:  "S3",
	125000:  "S4",
	250000:  "S5",
	500000:  "S6",
	800000:  "S7",
	1000000: "S8",
}

func (c *Channel) ID() uint8 {
	return c.id
}

// Send queues f for transmission. Invalid frames are rejected with
// ErrInvalidArgument.
func (c *Channel) Send(f frame.Frame) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	f.Data = append([]byte(nil), f.Data...)
	return c.d.enqueue(command{typ: commandFrame, channel: c.id, frame: f})
}

// SendRaw queues text as a configuration line, it is not validated.
func (c *Channel) SendRaw(text string) error {
	return c.d.enqueue(command{typ: commandRaw, channel: c.id, text: text})
}

// Open connects the channel to the bus.
func (c *Channel) Open() error {
	return c.SendRaw("O")
}

func (c *Channel) Close() error {
	return c.SendRaw("C")
}

// SetBitrate sets the nominal bitrate in bit/s. The standard rates use the
// short S commands, anything else is sent as is.
func (c *Channel) SetBitrate(bitrate int) error {
	if bitrate <= 0 {
		return fmt.Errorf("%w: bitrate %d", ErrInvalidArgument, bitrate)
	}
	if cmd, ok := bitrateCommands[bitrate]; ok {
		return c.SendRaw(cmd)
	}
	return c.SendRaw("y" + strconv.Itoa(bitrate))
}

// SetDataBitrate sets the FD data phase bitrate in Mbit/s, 1-15.
func (c *Channel) SetDataBitrate(mbit int) error {
	if mbit < 1 || mbit > 15 {
		return fmt.Errorf("%w: data bitrate %d Mbit/s, valid range is 1-15", ErrInvalidArgument, mbit)
	}
	return c.SendRaw("Y" + strconv.Itoa(mbit))
}

// SetSamplePoint sets the nominal and data phase sample points in percent.
// A nil value leaves that sample point unchanged. Both values are checked
// before anything is queued.
func (c *Channel) SetSamplePoint(nominal, data *float64) error {
	for _, v := range []*float64{nominal, data} {
		if v != nil && (*v <= 0 || *v >= 100) {
			return fmt.Errorf("%w: sample point %g%%, valid range is (0, 100)", ErrInvalidArgument, *v)
		}
	}
	if nominal != nil {
		if err := c.SendRaw("p" + strconv.Itoa(int(*nominal*10))); err != nil {
			return err
		}
	}
	if data != nil {
		if err := c.SendRaw("P" + strconv.Itoa(int(*data*10))); err != nil {
			return err
		}
	}
	return nil
}

func (c *Channel) SetListenOnly(enabled bool) error {
	if enabled {
		return c.SendRaw("L1")
	}
	return c.SendRaw("L0")
}

// SendPeriodic sends f every interval until ctx is done or the device stops.
// If update is not nil it is called after each send and its result is sent
// next.
func (c *Channel) SendPeriodic(ctx context.Context, f frame.Frame, interval time.Duration, update func(frame.Frame) frame.Frame) error {
	if interval <= 0 {
		return fmt.Errorf("%w: interval %s", ErrInvalidArgument, interval)
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if err := c.Send(f); err != nil {
			return err
		}
		if update != nil {
			f = update(f)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

// Subscribe returns a subscriber receiving only frames from this channel.
func (c *Channel) Subscribe(size int) *Subscriber {
	return c.d.h.subscribe(int(c.id), size, false)
}
