package linklayer

import (
	"sync"
	"sync/atomic"
	"time"
)

// timer is a single armable one-shot timer. Expiry sets a flag observed
// by the session's wait loops between reads, the same role the
// reference implementation gives a SIGALRM handler: the only piece of
// state that must be visible across the asynchronous boundary is the
// fired flag itself.
type timer struct {
	mu    sync.Mutex
	t     *time.Timer
	fired atomic.Bool
}

func newTimer() *timer {
	return &timer{}
}

// arm starts (or restarts) the timer for d. Arming clears any previous
// fired flag.
func (tm *timer) arm(d time.Duration) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.t != nil {
		tm.t.Stop()
	}
	tm.fired.Store(false)
	tm.t = time.AfterFunc(d, func() { tm.fired.Store(true) })
}

// disarm cancels the timer. It must be called before evaluating the
// outcome of a wait loop so an ACK takes precedence over a timeout that
// fires concurrently with its processing.
func (tm *timer) disarm() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.t != nil {
		tm.t.Stop()
	}
	tm.fired.Store(false)
}

func (tm *timer) hasFired() bool {
	return tm.fired.Load()
}
