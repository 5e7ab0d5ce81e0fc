package slcanx

import (
	"fmt"
	"sync/atomic"
)

type Stats struct {
	RecvBytes      uint64
	SentBytes      uint64
	RecvFrames     uint64
	SentFrames     uint64
	Commands       uint64
	WriteErrors    uint64
	ProtocolErrors uint64
	DroppedFrames  uint64
}

func (st Stats) String() string {
	return fmt.Sprintf("recv: %d frames (%d bytes) sent: %d frames %d commands (%d bytes) write errors: %d protocol errors: %d dropped: %d",
		st.RecvFrames, st.RecvBytes, st.SentFrames, st.Commands, st.SentBytes, st.WriteErrors, st.ProtocolErrors, st.DroppedFrames)
}

type counters struct {
	recvBytes      atomic.Uint64
	sentBytes      atomic.Uint64
	recvFrames     atomic.Uint64
	sentFrames     atomic.Uint64
	commands       atomic.Uint64
	writeErrors    atomic.Uint64
	protocolErrors atomic.Uint64
	dropped        atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		RecvBytes:      c.recvBytes.Load(),
		SentBytes:      c.sentBytes.Load(),
		RecvFrames:     c.recvFrames.Load(),
		SentFrames:     c.sentFrames.Load(),
		Commands:       c.commands.Load(),
		WriteErrors:    c.writeErrors.Load(),
		ProtocolErrors: c.protocolErrors.Load(),
		DroppedFrames:  c.dropped.Load(),
	}
}
