//go:build !rp2040 && !rp2350

package hw

import "sync"

// FakeIndicator implements Indicator for host-side tests.
type FakeIndicator struct {
	mu      sync.RWMutex
	level   bool
	toggles int
}

func (f *FakeIndicator) Set() {
	f.mu.Lock()
	f.level = true
	f.mu.Unlock()
}

func (f *FakeIndicator) Clear() {
	f.mu.Lock()
	f.level = false
	f.mu.Unlock()
}

func (f *FakeIndicator) Toggle() {
	f.mu.Lock()
	f.level = !f.level
	f.toggles++
	f.mu.Unlock()
}

// On exposes the lamp state for tests.
func (f *FakeIndicator) On() bool {
	f.mu.RLock()
	v := f.level
	f.mu.RUnlock()
	return v
}

// Toggles reports how many Toggle calls have been observed.
func (f *FakeIndicator) Toggles() int {
	f.mu.RLock()
	n := f.toggles
	f.mu.RUnlock()
	return n
}

// FakeClock records requested delays instead of sleeping, so the reset
// countdown runs instantly under test.
type FakeClock struct {
	mu     sync.Mutex
	delays []uint32
}

func (f *FakeClock) DelayMS(ms uint32) {
	f.mu.Lock()
	f.delays = append(f.delays, ms)
	f.mu.Unlock()
}

// Delays returns a copy of the recorded delay requests.
func (f *FakeClock) Delays() []uint32 {
	f.mu.Lock()
	out := append([]uint32(nil), f.delays...)
	f.mu.Unlock()
	return out
}

// FakeSystem records restart requests and, unlike hardware, returns.
type FakeSystem struct {
	mu       sync.Mutex
	restarts int
}

func (f *FakeSystem) Restart() {
	f.mu.Lock()
	f.restarts++
	f.mu.Unlock()
}

// Restarts reports how many times Restart was called.
func (f *FakeSystem) Restarts() int {
	f.mu.Lock()
	n := f.restarts
	f.mu.Unlock()
	return n
}

// DefaultBoard wires a Device out of fakes.
func DefaultBoard() *Device {
	return &Device{
		Indicator: &FakeIndicator{},
		Clock:     &FakeClock{},
		System:    &FakeSystem{},
	}
}
