package slcan

// LineBuffer collects bytes read from the adapter and splits them into lines.
// Incomplete data is kept until the next Write.
//
// A BELL byte is the adapter's negative acknowledge and is sent without CR,
// it is returned as a line of its own.
type LineBuffer struct {
	buf []byte
	off int
}

func NewLineBuffer(size int) *LineBuffer {
	return &LineBuffer{buf: make([]byte, 0, size)}
}

// Write appends p to the buffer.
func (lb *LineBuffer) Write(p []byte) (int, error) {
	if lb.off > 0 {
		n := copy(lb.buf, lb.buf[lb.off:])
		lb.buf = lb.buf[:n]
		lb.off = 0
	}
	lb.buf = append(lb.buf, p...)
	return len(p), nil
}

// Next returns the next complete line without its terminator. Empty lines are
// skipped. The returned slice is only valid until the next Write.
func (lb *LineBuffer) Next() ([]byte, bool) {
outer:
	for lb.off < len(lb.buf) {
		rest := lb.buf[lb.off:]
		for i, b := range rest {
			switch b {
			case CR:
				lb.off += i + 1
				if i == 0 {
					continue outer
				}
				return rest[:i], true
			case BELL:
				if i == 0 {
					lb.off++
					return rest[:1], true
				}
				// deliver what came before the bell first
				lb.off += i
				return rest[:i], true
			}
		}
		return nil, false
	}
	lb.buf = lb.buf[:0]
	lb.off = 0
	return nil, false
}

// Len returns the number of buffered bytes not yet returned as a line.
func (lb *LineBuffer) Len() int {
	return len(lb.buf) - lb.off
}

func (lb *LineBuffer) Reset() {
	lb.buf = lb.buf[:0]
	lb.off = 0
}
