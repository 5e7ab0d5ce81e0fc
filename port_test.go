package slcanx

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var errWriteFailed = errors.New("write failed")

// fakePort feeds reads from channels and records every write.
type fakePort struct {
	reads   chan []byte
	readErr chan error
	writes  chan []byte
	pending []byte

	failWrites atomic.Bool
	closed     chan struct{}
	closeOnce  sync.Once
}

func newFakePort() *fakePort {
	return &fakePort{
		reads:   make(chan []byte),
		readErr: make(chan error),
		writes:  make(chan []byte, 1024),
		closed:  make(chan struct{}),
	}
}

func (p *fakePort) Read(b []byte) (int, error) {
	if len(p.pending) > 0 {
		n := copy(b, p.pending)
		p.pending = p.pending[n:]
		return n, nil
	}
	t := time.NewTimer(time.Millisecond)
	defer t.Stop()
	select {
	case data := <-p.reads:
		n := copy(b, data)
		p.pending = data[n:]
		return n, nil
	case err := <-p.readErr:
		return 0, err
	case <-t.C:
		return 0, nil
	}
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.failWrites.Load() {
		return 0, errWriteFailed
	}
	p.writes <- append([]byte(nil), b...)
	return len(b), nil
}

func (p *fakePort) Close() error {
	p.closeOnce.Do(func() { close(p.closed) })
	return nil
}

// expect collects writes until want has been seen in full and fails if the
// collected bytes differ.
func (p *fakePort) expect(t *testing.T, want string) {
	t.Helper()
	var sb strings.Builder
	deadline := time.After(time.Second)
	for sb.Len() < len(want) {
		select {
		case b := <-p.writes:
			sb.Write(b)
		case <-deadline:
			t.Fatalf("timeout waiting for %q, got %q", want, sb.String())
		}
	}
	if got := sb.String(); got != want {
		t.Fatalf("wrote %q, want %q", got, want)
	}
}

func (p *fakePort) expectNoWrite(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case b := <-p.writes:
		t.Fatalf("unexpected write %q", b)
	case <-time.After(wait):
	}
}

func testConfig(t *testing.T) *Config {
	return &Config{
		OnMessage: func(msg string) { t.Log(msg) },
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
