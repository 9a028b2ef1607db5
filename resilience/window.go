package resilience

// slidingWindow is a count-based ring of the most recent call outcomes. The
// breaker trips on failure ratio only once the window holds a full sample,
// so a handful of early failures cannot open the circuit prematurely.
// Not safe for concurrent use; the breaker serializes access.
type slidingWindow struct {
	outcomes []bool // true = handled failure
	size     int
	next     int
	count    int
	failures int
}

func newSlidingWindow(size int) *slidingWindow {
	return &slidingWindow{
		outcomes: make([]bool, size),
		size:     size,
	}
}

// record adds one outcome, evicting the oldest once the window is full.
func (w *slidingWindow) record(failure bool) {
	if w.count == w.size {
		if w.outcomes[w.next] {
			w.failures--
		}
	} else {
		w.count++
	}
	w.outcomes[w.next] = failure
	if failure {
		w.failures++
	}
	w.next = (w.next + 1) % w.size
}

// full reports whether the window has reached minimum throughput.
func (w *slidingWindow) full() bool {
	return w.count == w.size
}

// failureRatio returns the fraction of recorded outcomes that were handled
// failures. Zero when nothing has been recorded.
func (w *slidingWindow) failureRatio() float64 {
	if w.count == 0 {
		return 0
	}
	return float64(w.failures) / float64(w.count)
}

func (w *slidingWindow) reset() {
	for i := range w.outcomes {
		w.outcomes[i] = false
	}
	w.next = 0
	w.count = 0
	w.failures = 0
}
