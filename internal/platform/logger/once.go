package logger

import "sync/atomic"

// Once emits a single warning for the lifetime of the value and drops the rest.
// Callers that can fail repeatedly (a down database on every request) own one
// Once each instead of sharing a package-level flag.
type Once struct {
	log   *Logger
	fired atomic.Bool
}

func NewOnce(log *Logger) *Once {
	if log == nil {
		log = NewNop()
	}
	return &Once{log: log}
}

// Warn logs msg the first time it is called and reports whether it did.
func (o *Once) Warn(msg string, keysAndValues ...interface{}) bool {
	if o == nil || !o.fired.CompareAndSwap(false, true) {
		return false
	}
	o.log.Warn(msg, keysAndValues...)
	return true
}

// Fired reports whether the warning has already been emitted.
func (o *Once) Fired() bool {
	return o != nil && o.fired.Load()
}
