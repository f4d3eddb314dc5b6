// Package hw is the hardware capability surface consumed by command
// handlers: a status indicator, a blocking delay, and the reset line.
// Implementations are selected by build tag; host builds get fakes
// that record what was done to them.
package hw

// Indicator is the board status lamp.
type Indicator interface {
	Set()
	Clear()
	Toggle()
}

// Clock provides the blocking delay used by command bodies.
type Clock interface {
	DelayMS(ms uint32)
}

// System owns the reset line. Restart never returns on real hardware;
// the host fake records the call and returns so tests can observe it.
type System interface {
	Restart()
}

// Device is the explicit hardware context constructed once in main and
// handed to every dependent (command handlers, services, the panic
// path). There are no package-level hardware singletons.
type Device struct {
	Indicator Indicator
	Clock     Clock
	System    System
}
