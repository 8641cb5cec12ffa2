package interp

import "runtime"

// Semaphore bounds how many external processes run at once. Discovery fans
// out over every PATH entry and workspace folder, and each unidentified
// interpreter costs a process spawn.
type Semaphore struct {
	slots chan struct{}
}

// NewSemaphore creates a semaphore with n slots. n <= 0 means one slot.
func NewSemaphore(n int) *Semaphore {
	if n <= 0 {
		n = 1
	}
	return &Semaphore{slots: make(chan struct{}, n)}
}

// Acquire blocks until a slot is free and returns the function that frees it.
func (s *Semaphore) Acquire() (release func()) {
	s.slots <- struct{}{}
	return func() { <-s.slots }
}

var spawnLimit = NewSemaphore(2 * runtime.NumCPU())
