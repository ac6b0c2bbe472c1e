package app

import (
	"sync"
	"time"
)

// questionTimer counts one active question down in one-second ticks.
// A room runs at most one timer at a time; advancing replaces it.
type questionTimer struct {
	mu        sync.Mutex
	remaining int
	paused    bool
	stopped   bool
	done      chan struct{}
}

// startQuestionTimer begins ticking and invokes onExpire exactly once when
// the countdown reaches zero, unless Stop is called first.
func startQuestionTimer(seconds int, onExpire func()) *questionTimer {
	t := &questionTimer{remaining: seconds, done: make(chan struct{})}
	go t.run(onExpire)
	return t
}

func (t *questionTimer) run(onExpire func()) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.stopped {
				t.mu.Unlock()
				return
			}
			if t.paused {
				t.mu.Unlock()
				continue
			}
			t.remaining--
			expired := t.remaining <= 0
			if expired {
				t.stopped = true
			}
			t.mu.Unlock()
			if expired {
				onExpire()
				return
			}
		}
	}
}

// Stop cancels ticking. Stopping an already-stopped timer is a no-op.
func (t *questionTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	close(t.done)
}

// Pause freezes the remaining time. No-op once stopped.
func (t *questionTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.paused = true
}

// Resume continues the countdown from the frozen value.
func (t *questionTimer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.paused = false
}

// Remaining reports the seconds left on the countdown.
func (t *questionTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}
