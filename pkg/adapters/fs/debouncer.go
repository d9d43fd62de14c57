package fs

import (
	"sync"
	"time"

	"github.com/aretw0/bubbly/pkg/core"
)

// debouncer delays delivery of key events and keeps only the last event per key seen
// within the delay.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

// add schedules fn(e) after the delay, replacing any event still pending for e.Key.
func (d *debouncer) add(e core.KeyEvent, fn func(core.KeyEvent)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if t, ok := d.timers[e.Key]; ok && t.Stop() {
		d.wg.Done()
	}

	d.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		if d.timers[e.Key] == t {
			delete(d.timers, e.Key)
		}
		d.mu.Unlock()
		fn(e)
	})
	d.timers[e.Key] = t
}

// pending returns how many keys still wait for delivery.
func (d *debouncer) pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// stopAndWait drops pending events and waits up to timeout for callbacks already running.
// It reports whether every callback finished in time.
func (d *debouncer) stopAndWait(timeout time.Duration) bool {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
