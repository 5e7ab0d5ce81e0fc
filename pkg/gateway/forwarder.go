// Package gateway forwards frames from several CAN interfaces to one CAN-FD
// interface, upgrading every frame to FD with bit rate switching.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/roffe/slcanx/pkg/frame"
	"github.com/roffe/slcanx/pkg/socketcan"
	"golang.org/x/sync/errgroup"
)

type Source interface {
	Name() string
	// ReadFrame blocks for the next frame, it must return an error once
	// Close has been called.
	ReadFrame() (frame.Frame, error)
	Close() error
}

type Sink interface {
	WriteFrame(frame.Frame) error
}

type Config struct {
	Debug     bool
	QueueSize int
	OnMessage func(string)
}

type Stats struct {
	Forwarded   uint64
	ErrorFrames uint64
	TxErrors    uint64
}

func (st Stats) String() string {
	return fmt.Sprintf("forwarded: %d error frames: %d tx errors: %d", st.Forwarded, st.ErrorFrames, st.TxErrors)
}

// Forwarder reads every source on its own goroutine and writes all frames
// to the sink from a single goroutine.
type Forwarder struct {
	cfg     Config
	dst     Sink
	sources []Source
	queue   chan frame.Frame

	forwarded   atomic.Uint64
	errorFrames atomic.Uint64
	txErrors    atomic.Uint64
}

func NewForwarder(dst Sink, sources []Source, cfg *Config) *Forwarder {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.OnMessage == nil {
		c.OnMessage = func(msg string) { log.Println(msg) }
	}
	return &Forwarder{
		cfg:     c,
		dst:     dst,
		sources: sources,
		queue:   make(chan frame.Frame, c.QueueSize),
	}
}

// Run forwards until ctx is done or a source fails. Sources are closed when
// Run returns.
func (fw *Forwarder) Run(ctx context.Context) error {
	if len(fw.sources) == 0 {
		return errors.New("no source interfaces")
	}
	errg, gctx := errgroup.WithContext(ctx)
	for _, src := range fw.sources {
		errg.Go(fw.recvManager(gctx, src))
	}
	errg.Go(fw.sendManager(gctx))
	errg.Go(func() error {
		<-gctx.Done()
		for _, src := range fw.sources {
			if err := src.Close(); err != nil {
				fw.cfg.OnMessage(fmt.Sprintf("failed to close %s: %v", src.Name(), err))
			}
		}
		return nil
	})
	return errg.Wait()
}

func (fw *Forwarder) Stats() Stats {
	return Stats{
		Forwarded:   fw.forwarded.Load(),
		ErrorFrames: fw.errorFrames.Load(),
		TxErrors:    fw.txErrors.Load(),
	}
}

func (fw *Forwarder) recvManager(ctx context.Context, src Source) func() error {
	return func() error {
		for {
			f, err := src.ReadFrame()
			if err != nil {
				if errors.Is(err, socketcan.ErrErrorFrame) {
					fw.errorFrames.Add(1)
					continue
				}
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("%s: %w", src.Name(), err)
			}
			select {
			case fw.queue <- Upgrade(f):
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (fw *Forwarder) sendManager(ctx context.Context) func() error {
	return func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case f := <-fw.queue:
				if err := fw.dst.WriteFrame(f); err != nil {
					fw.txErrors.Add(1)
					fw.cfg.OnMessage(fmt.Sprintf("tx error: %v", err))
					continue
				}
				fw.forwarded.Add(1)
				if fw.cfg.Debug {
					fw.cfg.OnMessage(f.String())
				}
			}
		}
	}
}
