package client

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type callbackLog struct {
	mu       sync.Mutex
	armed    []string
	disarmed []string
}

func (l *callbackLog) onArmed(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.armed = append(l.armed, id)
}

func (l *callbackLog) onDisarmed(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.disarmed = append(l.disarmed, id)
}

func (l *callbackLog) armedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.armed)
}

func (l *callbackLog) disarmedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.disarmed)
}

func TestArmEnablesUntilExpiry(t *testing.T) {
	log := &callbackLog{}
	timer := NewReArmTimer(80*time.Millisecond, log.onArmed, log.onDisarmed)
	defer timer.Close()

	timer.Arm("apt-1")
	assert.True(t, timer.IsArmed("apt-1"))
	assert.Equal(t, 1, log.armedCount())

	assert.Eventually(t, func() bool {
		return log.disarmedCount() == 1
	}, time.Second, 10*time.Millisecond)
	assert.False(t, timer.IsArmed("apt-1"))
}

func TestReArmRestartsCountdown(t *testing.T) {
	log := &callbackLog{}
	timer := NewReArmTimer(120*time.Millisecond, log.onArmed, log.onDisarmed)
	defer timer.Close()

	timer.Arm("apt-1")
	time.Sleep(70 * time.Millisecond)
	timer.Arm("apt-1")

	// Past the first arm's expiry, inside the second arm's window.
	time.Sleep(80 * time.Millisecond)
	assert.True(t, timer.IsArmed("apt-1"))

	assert.Eventually(t, func() bool {
		return !timer.IsArmed("apt-1")
	}, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	// The replaced countdown must not have fired its own disarm.
	assert.Equal(t, 1, log.disarmedCount())
	assert.Equal(t, 2, log.armedCount())
}

func TestDisarmCancelsCountdown(t *testing.T) {
	log := &callbackLog{}
	timer := NewReArmTimer(50*time.Millisecond, log.onArmed, log.onDisarmed)
	defer timer.Close()

	timer.Arm("apt-1")
	timer.Disarm("apt-1")
	assert.False(t, timer.IsArmed("apt-1"))
	assert.Equal(t, 1, log.disarmedCount())

	// A disarm with nothing armed stays silent.
	timer.Disarm("apt-1")
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, log.disarmedCount())
}

func TestApartmentsArmIndependently(t *testing.T) {
	timer := NewReArmTimer(time.Minute, nil, nil)
	defer timer.Close()

	timer.Arm("apt-1")
	timer.Arm("apt-2")
	timer.Disarm("apt-1")

	assert.False(t, timer.IsArmed("apt-1"))
	assert.True(t, timer.IsArmed("apt-2"))
}

func TestCloseCancelsEverything(t *testing.T) {
	log := &callbackLog{}
	timer := NewReArmTimer(30*time.Millisecond, log.onArmed, log.onDisarmed)

	timer.Arm("apt-1")
	timer.Arm("apt-2")
	timer.Close()

	assert.False(t, timer.IsArmed("apt-1"))
	assert.False(t, timer.IsArmed("apt-2"))

	timer.Arm("apt-3")
	assert.False(t, timer.IsArmed("apt-3"))

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, log.disarmedCount())
}
