package syncutils

import "sync/atomic"

// Flag is a one-way latch: once raised it stays raised.
type Flag struct {
	v atomic.Uint32
}

// Raise sets the flag and reports whether this call was the one that
// raised it.
func (f *Flag) Raise() bool {
	return f.v.CompareAndSwap(0, 1)
}

func (f *Flag) IsRaised() bool {
	return f.v.Load() == 1
}
