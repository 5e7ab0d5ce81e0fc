package slcanx

import (
	"fmt"
	"time"

	"github.com/roffe/slcanx/pkg/slcan"
)

// Longest unterminated input kept before it is considered garbage.
const maxPartialLine = 4096

// worker owns the port. It alternates between reading, collecting commands
// and writing them in one burst, all on a single goroutine.
type worker struct {
	cfg    *Config
	port   Port
	cmds   <-chan command
	events chan<- event
	done   chan struct{}
	stats  *counters

	lines   *slcan.LineBuffer
	readBuf []byte
	out     []byte
	poll    *time.Timer
}

func newWorker(cfg *Config, port Port, cmds <-chan command, events chan<- event, stats *counters) *worker {
	poll := time.NewTimer(cfg.PollInterval)
	poll.Stop()
	return &worker{
		cfg:     cfg,
		port:    port,
		cmds:    cmds,
		events:  events,
		done:    make(chan struct{}),
		stats:   stats,
		lines:   slcan.NewLineBuffer(1024),
		readBuf: make([]byte, 1024),
		out:     make([]byte, 0, MaxBurstSize+160),
		poll:    poll,
	}
}

func (w *worker) run() {
	// done is closed before events so anyone observing the dispatcher stop
	// also sees the worker gone
	defer close(w.events)
	defer close(w.done)
	defer w.port.Close()
	for {
		if err := w.read(); err != nil {
			w.cfg.OnMessage(err.Error())
			w.events <- event{typ: eventDeviceError, time: time.Now(), details: err.Error()}
			return
		}
		if !w.drain() {
			return
		}
		w.flush()
	}
}

func (w *worker) read() error {
	n, err := w.port.Read(w.readBuf)
	if err != nil {
		if isTimeout(err) {
			return nil
		}
		return fmt.Errorf("failed to read com port: %w", err)
	}
	if n == 0 {
		return nil
	}
	w.stats.recvBytes.Add(uint64(n))
	w.lines.Write(w.readBuf[:n])
	for {
		line, ok := w.lines.Next()
		if !ok {
			break
		}
		w.dispatch(line)
	}
	if w.lines.Len() > maxPartialLine {
		w.cfg.OnMessage(fmt.Sprintf("discarding %d bytes without line terminator", w.lines.Len()))
		w.lines.Reset()
	}
	return nil
}

func (w *worker) dispatch(line []byte) {
	msg, err := slcan.Decode(line)
	if err != nil {
		w.stats.protocolErrors.Add(1)
		if w.cfg.Debug {
			w.cfg.OnMessage(err.Error())
		}
		return
	}
	switch msg.Kind {
	case slcan.KindFrame:
		if w.cfg.Debug {
			w.cfg.OnMessage("<< " + string(line))
		}
		w.stats.recvFrames.Add(1)
		select {
		case w.events <- event{typ: eventFrame, channel: msg.Channel, frame: msg.Frame, time: time.Now()}:
		default:
			w.stats.dropped.Add(1)
			w.cfg.OnMessage(ErrDroppedFrame.Error())
		}
	case slcan.KindError:
		if msg.Status != nil {
			w.cfg.OnMessage(fmt.Sprintf("channel %d: %s", msg.Channel, msg.Status))
		} else {
			w.cfg.OnMessage(fmt.Sprintf("channel %d: error %q", msg.Channel, msg.Raw))
		}
	case slcan.KindNack:
		w.cfg.OnMessage(fmt.Sprintf("channel %d: command not acknowledged", msg.Channel))
	default:
		if w.cfg.Debug {
			w.cfg.OnMessage(fmt.Sprintf("channel %d: %q", msg.Channel, msg.Raw))
		}
	}
}

// drain collects commands into the write buffer. It returns false when the
// worker should stop.
func (w *worker) drain() bool {
	var start time.Time
	for {
		if len(w.out) > 0 {
			if time.Since(start) > w.cfg.GroupWindow || len(w.out) > MaxBurstSize {
				return true
			}
			select {
			case cmd := <-w.cmds:
				if !w.handle(cmd) {
					return false
				}
			default:
				return true
			}
			continue
		}

		w.poll.Reset(w.cfg.PollInterval)
		select {
		case cmd := <-w.cmds:
			w.poll.Stop()
			start = time.Now()
			if !w.handle(cmd) {
				return false
			}
		case <-w.poll.C:
			return true
		}
	}
}

func (w *worker) handle(cmd command) bool {
	switch cmd.typ {
	case commandShutdown:
		return false
	case commandFrame:
		w.out = slcan.AppendFrame(w.out, cmd.channel, cmd.frame)
		w.stats.sentFrames.Add(1)
	case commandRaw:
		w.out = slcan.AppendCommand(w.out, cmd.channel, cmd.text)
		w.stats.commands.Add(1)
	}
	return true
}

func (w *worker) flush() {
	if len(w.out) == 0 {
		return
	}
	if w.cfg.Debug {
		w.cfg.OnMessage(fmt.Sprintf(">> %q", w.out))
	}
	n, err := w.port.Write(w.out)
	if err != nil {
		w.stats.writeErrors.Add(1)
		w.cfg.OnMessage(fmt.Sprintf("failed to write to com port: %v", err))
	}
	w.stats.sentBytes.Add(uint64(n))
	w.out = w.out[:0]
}
