package surface

// FrameQueue is a Scheduler flushed once per display refresh by the host
// loop. Callbacks scheduled while a flush is running wait for the next one.
// It is not safe for concurrent use; it lives on the render thread.
type FrameQueue struct {
	pending []*queued
}

type queued struct {
	fn        func()
	cancelled bool
}

func (q *queued) Cancel() { q.cancelled = true }

// Schedule implements Scheduler.
func (fq *FrameQueue) Schedule(fn func()) Handle {
	e := &queued{fn: fn}
	fq.pending = append(fq.pending, e)
	return e
}

// Len is the number of callbacks waiting, cancelled ones included.
func (fq *FrameQueue) Len() int { return len(fq.pending) }

// Flush runs every callback that was pending when it was called and
// returns how many ran.
func (fq *FrameQueue) Flush() int {
	batch := fq.pending
	fq.pending = nil
	ran := 0
	for _, e := range batch {
		if e.cancelled {
			continue
		}
		// a callback can only fire once
		e.cancelled = true
		e.fn()
		ran++
	}
	return ran
}
