package slcanx

// anyChannel subscribes to every channel.
const anyChannel = -1

// handler is the only reader of the worker's event queue, it fans out
// incoming frames to subscribers by channel. Subscriptions are changed through
// channels so the subscriber map is only touched by the run goroutine.
type handler struct {
	events     <-chan event
	register   chan *Subscriber
	unregister chan *Subscriber
	subs       map[*Subscriber]struct{}
	stats      *counters
	cfg        *Config

	// failure is written by run before the subscriber channels are closed
	// and must only be read after observing that close or done.
	failure error
	done    chan struct{}
}

func newHandler(cfg *Config, events <-chan event, stats *counters) *handler {
	return &handler{
		events:     events,
		register:   make(chan *Subscriber),
		unregister: make(chan *Subscriber),
		subs:       make(map[*Subscriber]struct{}),
		stats:      stats,
		cfg:        cfg,
		done:       make(chan struct{}),
	}
}

func (h *handler) run() {
	defer func() {
		for sub := range h.subs {
			close(sub.responseChan)
		}
	}()
	// done is closed before the subscriber channels so a reader seeing its
	// channel closed also sees failure
	defer close(h.done)
	for {
		select {
		case sub := <-h.register:
			h.subs[sub] = struct{}{}
		case sub := <-h.unregister:
			h.unsub(sub)
		case ev, ok := <-h.events:
			if !ok {
				return
			}
			switch ev.typ {
			case eventFrame:
				h.fanout(ev)
			case eventDeviceError:
				h.failure = &DeviceError{Message: ev.details}
			}
		}
	}
}

func (h *handler) unsub(sub *Subscriber) {
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.responseChan)
	}
}

// fanout gives every matching subscriber its own copy of the payload.
func (h *handler) fanout(ev event) {
	for sub := range h.subs {
		if sub.channel != anyChannel && sub.channel != int(ev.channel) {
			continue
		}
		f := ev.frame
		f.Data = append([]byte(nil), f.Data...)
		msg := &Message{Channel: ev.channel, Frame: f, Time: ev.time}
		select {
		case sub.responseChan <- msg:
			continue
		default:
		}
		if sub.latest {
			// only the handler sends, so one receive makes room
			select {
			case <-sub.responseChan:
			default:
			}
			select {
			case sub.responseChan <- msg:
			default:
			}
			continue
		}
		h.stats.dropped.Add(1)
		if h.cfg.Debug {
			h.cfg.OnMessage(ErrDroppedFrame.Error())
		}
	}
}

// subscribe registers a subscriber, if the handler has already stopped the
// subscriber is returned closed. A latest subscriber discards its oldest
// message when full instead of counting a drop.
func (h *handler) subscribe(channel, size int, latest bool) *Subscriber {
	sub := &Subscriber{
		h:            h,
		channel:      channel,
		latest:       latest,
		responseChan: make(chan *Message, size),
	}
	select {
	case h.register <- sub:
	case <-h.done:
		close(sub.responseChan)
	}
	return sub
}

// err returns why the handler stopped, only valid after done is closed.
func (h *handler) err() error {
	if h.failure != nil {
		return h.failure
	}
	return ErrDisconnected
}
