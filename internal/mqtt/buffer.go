package mqtt

// message is a serialized MQTT message held for replay after reconnection.
type message struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO of messages queued while disconnected.
// When full the oldest message is overwritten.
// Not safe for concurrent use; caller must synchronize.
type ringBuffer struct {
	buf     []message
	head    int // next write position
	count   int
	dropped int // messages overwritten since last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &ringBuffer{buf: make([]message, capacity)}
}

// push appends msg and reports whether an older message was dropped.
func (r *ringBuffer) push(msg message) bool {
	full := r.count == len(r.buf)
	r.buf[r.head] = msg
	r.head = (r.head + 1) % len(r.buf)
	if full {
		r.dropped++
		return true
	}
	r.count++
	return false
}

// drain returns queued messages oldest first and empties the buffer.
func (r *ringBuffer) drain() []message {
	if r.count == 0 {
		return nil
	}

	out := make([]message, r.count)
	start := (r.head - r.count + len(r.buf)) % len(r.buf)
	for i := range out {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}

	r.count = 0
	r.head = 0
	r.dropped = 0
	return out
}

func (r *ringBuffer) len() int {
	return r.count
}
