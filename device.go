// Package slcanx drives slcanx USB CAN-FD adapters. One adapter carries up to
// four CAN buses over a single serial line, each bus is reached through a
// Channel.
//
//	dev, err := slcanx.Open(ctx, &slcanx.Config{Port: "/dev/ttyACM0"})
//	if err != nil {
//		return err
//	}
//	defer dev.Close()
//	ch, _ := dev.Channel(0)
//	ch.SetBitrate(500000)
//	ch.Open()
//	ch.Send(frame.New(0x123, []byte{1, 2, 3}))
//	msg, err := dev.Receive(ctx)
package slcanx

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/roffe/slcanx/pkg/slcan"
)

const MaxChannels = slcan.MaxChannels

// Device owns the worker goroutine serving one adapter.
type Device struct {
	cfg   *Config
	cmds  chan command
	w     *worker
	h     *handler
	all   *Subscriber
	stats counters

	closeOnce sync.Once
}

// Open opens the serial port named in cfg and starts the worker. The device is
// closed when ctx is done.
func Open(ctx context.Context, cfg *Config) (*Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	port, err := openSerial(cfg)
	if err != nil {
		return nil, err
	}
	d := newDevice(port, cfg)
	go func() {
		select {
		case <-ctx.Done():
			d.Close()
		case <-d.w.done:
		}
	}()
	return d, nil
}

// NewDevice starts a worker on an already open port.
func NewDevice(port Port, cfg *Config) *Device {
	return newDevice(port, cfg.withDefaults())
}

func newDevice(port Port, cfg *Config) *Device {
	d := &Device{
		cfg:  cfg,
		cmds: make(chan command, cfg.CommandQueueSize),
	}
	events := make(chan event, cfg.EventQueueSize)
	d.w = newWorker(cfg, port, d.cmds, events, &d.stats)
	d.h = newHandler(cfg, events, &d.stats)
	go d.h.run()
	d.all = d.h.subscribe(anyChannel, cfg.EventQueueSize, true)
	go d.w.run()
	return d
}

// Channel returns the facade for channel id 0-3.
func (d *Device) Channel(id uint8) (*Channel, error) {
	if id >= MaxChannels {
		return nil, fmt.Errorf("%w: channel %d, valid channels are 0-%d", ErrInvalidArgument, id, MaxChannels-1)
	}
	return &Channel{id: id, d: d}, nil
}

// Subscribe returns a subscriber receiving frames from all channels,
// independent of Receive.
func (d *Device) Subscribe(size int) *Subscriber {
	return d.h.subscribe(anyChannel, size, false)
}

// Receive blocks until a frame arrives on any channel. Frames are queued for
// Receive from the start, at most EventQueueSize of them; when nobody calls
// Receive the oldest are discarded and not counted in Stats. Once the worker
// has failed and all queued frames are consumed the failure is returned as a
// *DeviceError.
func (d *Device) Receive(ctx context.Context) (*Message, error) {
	return d.all.Wait(ctx)
}

// ReceiveTimeout is like Receive but returns nil, nil when timeout expires.
func (d *Device) ReceiveTimeout(timeout time.Duration) (*Message, error) {
	return d.all.WaitTimeout(timeout)
}

// SendRaw writes text prefixed with the channel digit and terminated by CR.
func (d *Device) SendRaw(channel uint8, text string) error {
	if channel >= MaxChannels {
		return fmt.Errorf("%w: channel %d, valid channels are 0-%d", ErrInvalidArgument, channel, MaxChannels-1)
	}
	return d.enqueue(command{typ: commandRaw, channel: channel, text: text})
}

func (d *Device) Stats() Stats {
	return d.stats.snapshot()
}

// Done is closed when the worker has stopped.
func (d *Device) Done() <-chan struct{} {
	return d.w.done
}

// Err returns nil while the device is running, the *DeviceError that stopped
// it or ErrDisconnected after Close.
func (d *Device) Err() error {
	select {
	case <-d.h.done:
		return d.h.err()
	default:
		return nil
	}
}

// Close stops the worker, commands not yet written are discarded.
func (d *Device) Close() error {
	d.closeOnce.Do(func() {
		select {
		case d.cmds <- command{typ: commandShutdown}:
		case <-d.w.done:
		}
		<-d.w.done
		<-d.h.done
	})
	return nil
}

func (d *Device) enqueue(cmd command) error {
	select {
	case <-d.w.done:
		return ErrDisconnected
	default:
	}
	select {
	case d.cmds <- cmd:
		return nil
	case <-d.w.done:
		return ErrDisconnected
	}
}
