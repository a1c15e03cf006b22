// Package client is the Go client for the picobell doorbell API. It covers
// the pieces a mobile app needs around the ring protocol: receiving ring
// events, the per-apartment re-arm countdown gating the "open" control, and
// submitting the open request.
package client

import (
	"sync"
	"time"
)

// DefaultWindow is the client-side countdown. It must stay at or below the
// server's ring validity window so the UI never offers an open the server
// would reject.
const DefaultWindow = 180 * time.Second

type armedTimer struct {
	timer *time.Timer
	gen   uint64
}

// ReArmTimer drives the per-apartment Idle/Armed state machine behind the
// "open" control. Arming an already-armed apartment restarts its countdown
// from the full window instead of stacking a second timer, so there is
// exactly one pending expiry per apartment at any time.
type ReArmTimer struct {
	window     time.Duration
	onArmed    func(apartmentID string)
	onDisarmed func(apartmentID string)

	mu     sync.Mutex
	timers map[string]armedTimer
	gen    uint64
	closed bool
}

// NewReArmTimer creates a timer set with the given countdown window. The
// callbacks fire outside the internal lock; either may be nil.
func NewReArmTimer(window time.Duration, onArmed, onDisarmed func(apartmentID string)) *ReArmTimer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &ReArmTimer{
		window:     window,
		onArmed:    onArmed,
		onDisarmed: onDisarmed,
		timers:     make(map[string]armedTimer),
	}
}

// Arm transitions the apartment to Armed and (re)starts its countdown. Any
// pending expiry for the apartment is replaced, never accumulated.
func (t *ReArmTimer) Arm(apartmentID string) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	if existing, ok := t.timers[apartmentID]; ok {
		existing.timer.Stop()
	}
	t.gen++
	gen := t.gen
	timer := time.AfterFunc(t.window, func() {
		t.expire(apartmentID, gen)
	})
	t.timers[apartmentID] = armedTimer{timer: timer, gen: gen}
	t.mu.Unlock()

	if t.onArmed != nil {
		t.onArmed(apartmentID)
	}
}

// Disarm cancels the countdown and returns the apartment to Idle, e.g. when
// the server confirms the event was consumed. No-op when already Idle.
func (t *ReArmTimer) Disarm(apartmentID string) {
	t.mu.Lock()
	existing, ok := t.timers[apartmentID]
	if ok {
		existing.timer.Stop()
		delete(t.timers, apartmentID)
	}
	t.mu.Unlock()

	if ok && t.onDisarmed != nil {
		t.onDisarmed(apartmentID)
	}
}

// IsArmed reports whether the apartment's "open" control should be enabled.
func (t *ReArmTimer) IsArmed(apartmentID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.timers[apartmentID]
	return ok
}

// Close cancels every pending countdown. Used when the UI scope owning the
// timers is torn down; no callbacks fire.
func (t *ReArmTimer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	for id, entry := range t.timers {
		entry.timer.Stop()
		delete(t.timers, id)
	}
}

// expire fires when a countdown runs out. The generation check drops stale
// expiries: a timer that was replaced by a newer Arm must not disable the
// control the newer arm enabled.
func (t *ReArmTimer) expire(apartmentID string, gen uint64) {
	t.mu.Lock()
	current, ok := t.timers[apartmentID]
	if !ok || current.gen != gen {
		t.mu.Unlock()
		return
	}
	delete(t.timers, apartmentID)
	t.mu.Unlock()

	if t.onDisarmed != nil {
		t.onDisarmed(apartmentID)
	}
}
