//go:build !deadlock
// +build !deadlock

package syncutils

import "sync"

// Mutex is sync.Mutex unless built with the deadlock tag, in which case
// lock ordering is checked at runtime.
type Mutex struct {
	sync.Mutex
}

type RWMutex struct {
	sync.RWMutex
}
