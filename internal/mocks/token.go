package mocks

import (
	"time"
)

// DoneToken is an mqtt.Token that has already completed with the given error.
type DoneToken struct {
	Err error
}

// Wait returns immediately
func (t *DoneToken) Wait() bool { return true }

// WaitTimeout returns immediately
func (t *DoneToken) WaitTimeout(time.Duration) bool { return true }

// Done returns a closed channel
func (t *DoneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Error returns the configured error
func (t *DoneToken) Error() error { return t.Err }
