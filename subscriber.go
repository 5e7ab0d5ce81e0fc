package slcanx

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Subscriber receives frames for one channel, or for all channels when
// created from the Device.
type Subscriber struct {
	h            *handler
	channel      int
	latest       bool
	responseChan chan *Message
	closeOnce    sync.Once
}

// Close stops delivery and closes the channel returned by Chan.
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() {
		select {
		case s.h.unregister <- s:
		case <-s.h.done:
		}
	})
}

// Chan returns the frame queue, it is closed when the subscriber or the device
// is closed.
func (s *Subscriber) Chan() <-chan *Message {
	return s.responseChan
}

// Wait blocks for the next message.
func (s *Subscriber) Wait(ctx context.Context) (*Message, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("wait: %w", ctx.Err())
	case msg, ok := <-s.responseChan:
		if !ok {
			return nil, s.closedErr()
		}
		return msg, nil
	}
}

// WaitTimeout returns nil, nil when no message arrived within timeout.
func (s *Subscriber) WaitTimeout(timeout time.Duration) (*Message, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-t.C:
		return nil, nil
	case msg, ok := <-s.responseChan:
		if !ok {
			return nil, s.closedErr()
		}
		return msg, nil
	}
}

func (s *Subscriber) closedErr() error {
	select {
	case <-s.h.done:
		return s.h.err()
	default:
		// closed by Close while the device is still running
		return ErrDisconnected
	}
}
