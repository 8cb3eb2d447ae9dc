package recompute

import "sync/atomic"

// Tracker hands out monotonically increasing generation numbers and tells
// whether a generation is still the newest. Results tagged with an older
// generation are stale and should be dropped on arrival.
type Tracker struct {
	latest atomic.Uint64
}

// Next reserves and returns a new generation.
func (t *Tracker) Next() uint64 {
	return t.latest.Add(1)
}

// Latest returns the newest generation handed out so far.
func (t *Tracker) Latest() uint64 {
	return t.latest.Load()
}

// Current reports whether gen is the newest generation.
func (t *Tracker) Current(gen uint64) bool {
	return gen == t.latest.Load()
}
