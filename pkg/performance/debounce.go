package performance

import (
	"sync"
	"time"
)

// Debouncer runs a function once a key has been quiet for a set duration
type Debouncer struct {
	mutex    sync.Mutex
	timers   map[string]*time.Timer
	duration time.Duration
	running  sync.WaitGroup
	stopped  bool
}

// NewDebouncer creates a new debouncer with the specified duration
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		timers:   make(map[string]*time.Timer),
		duration: duration,
	}
}

// Debounce schedules fn after the quiet period. Calling again with the
// same key before it fires replaces the pending call.
func (d *Debouncer) Debounce(key string, fn func()) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.stopped {
		return
	}
	if timer, exists := d.timers[key]; exists {
		timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(d.duration, func() {
		d.mutex.Lock()
		if d.stopped || d.timers[key] != timer {
			d.mutex.Unlock()
			return
		}
		delete(d.timers, key)
		d.running.Add(1)
		d.mutex.Unlock()

		defer d.running.Done()
		fn()
	})
	d.timers[key] = timer
}

// Pending reports how many keys have a scheduled call
func (d *Debouncer) Pending() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return len(d.timers)
}

// Cancel drops the pending call for key
func (d *Debouncer) Cancel(key string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if timer, exists := d.timers[key]; exists {
		timer.Stop()
		delete(d.timers, key)
	}
}

// Stop drops every pending call, refuses new ones and waits for calls
// already running
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	d.stopped = true
	for key, timer := range d.timers {
		timer.Stop()
		delete(d.timers, key)
	}
	d.mutex.Unlock()

	d.running.Wait()
}
