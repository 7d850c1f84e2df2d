package observe

// Dispatcher decides when a notification is delivered.
type Dispatcher interface {
	Dispatch(deliver func())
}

// DispatchFunc adapts a function to the Dispatcher interface.
type DispatchFunc func(deliver func())

// Dispatch calls f(deliver).
func (f DispatchFunc) Dispatch(deliver func()) { f(deliver) }

// Queue is a FIFO Dispatcher. Deliveries accumulate until Flush.
type Queue struct {
	pending  []func()
	flushing bool
}

// Dispatch appends deliver to the queue.
func (q *Queue) Dispatch(deliver func()) {
	q.pending = append(q.pending, deliver)
}

// Len returns the number of pending deliveries.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Flushing reports whether Flush is running.
func (q *Queue) Flushing() bool {
	return q.flushing
}

// Flush runs pending deliveries in order, including any queued while
// flushing, until the queue is empty. A nested Flush returns immediately.
// If a delivery panics the remaining deliveries are discarded.
func (q *Queue) Flush() {
	if q.flushing {
		return
	}
	q.flushing = true
	done := false
	defer func() {
		q.flushing = false
		if !done {
			q.pending = nil
		}
	}()
	for len(q.pending) > 0 {
		deliver := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		deliver()
	}
	q.pending = nil
	done = true
}

// Discard drops all pending deliveries.
func (q *Queue) Discard() {
	q.pending = nil
}
