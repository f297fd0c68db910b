package hazard

// frameQueue is a fixed-capacity ring buffer with drop-oldest overflow.
// The producer never blocks; the newest frame always gets in. Callers
// hold the pipeline mutex.
type frameQueue struct {
	buf  [][]byte
	head int
	n    int
}

func newFrameQueue(capacity int) *frameQueue {
	return &frameQueue{buf: make([][]byte, capacity)}
}

// push enqueues a frame, evicting the oldest pending frame when full.
// It reports whether an eviction happened.
func (q *frameQueue) push(frame []byte) bool {
	dropped := false
	if q.n == len(q.buf) {
		q.buf[q.head] = nil
		q.head = (q.head + 1) % len(q.buf)
		q.n--
		dropped = true
	}
	q.buf[(q.head+q.n)%len(q.buf)] = frame
	q.n++
	return dropped
}

// pop dequeues the oldest pending frame.
func (q *frameQueue) pop() ([]byte, bool) {
	if q.n == 0 {
		return nil, false
	}
	frame := q.buf[q.head]
	q.buf[q.head] = nil
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return frame, true
}

// clear drops all pending frames.
func (q *frameQueue) clear() {
	for i := range q.buf {
		q.buf[i] = nil
	}
	q.head = 0
	q.n = 0
}

func (q *frameQueue) len() int { return q.n }
