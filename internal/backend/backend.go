package backend

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	MaxDutyValue = 255
	MinDutyValue = 0
)

// PortAddress is a raw EC port address. It is a distinct type from duty
// value integers, so an address can never be accidentally passed where a
// duty value is expected (or vice versa).
type PortAddress uint16

func (a PortAddress) String() string {
	return fmt.Sprintf("0x%02X", uint16(a))
}

// AccessBackend is the polymorphic write/read mechanism behind a single
// fan actuator. Implementations must not block past the timeout given on
// the context; they return ErrTimeout instead.
type AccessBackend interface {
	// Read returns the current duty value of the actuator.
	Read(ctx context.Context) (int, error)

	// Write sets the duty value of the actuator. A nil error only means the
	// write was accepted, not that it took effect. Firmware may silently
	// revert it, which is detectable only via a later Read.
	Write(ctx context.Context, duty int) error

	// Restore hands control of the actuator back to the firmware.
	Restore(ctx context.Context) error

	// String describes the backend target (path or address) for logging.
	String() string
}

var (
	addressLocksMu sync.Mutex
	addressLocks   = map[string]*sync.Mutex{}
)

// lockForAddress returns the mutex serializing access to the given
// path/address key. Concurrent writers to the same address are queued,
// never interleaved.
func lockForAddress(key string) *sync.Mutex {
	addressLocksMu.Lock()
	defer addressLocksMu.Unlock()

	lock, ok := addressLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		addressLocks[key] = lock
	}
	return lock
}

// serializedCall runs op under the per-address lock for key and waits for
// its result at most until the context deadline. If the deadline passes
// first, ErrTimeout is returned; op keeps running in the background and
// its result is discarded. The lock is taken inside the worker goroutine,
// so a late completion can never interleave with the next operation queued
// on the same address.
func serializedCall(ctx context.Context, key string, op func() (int, error)) (int, error) {
	type result struct {
		value int
		err   error
	}

	done := make(chan result, 1)
	go func() {
		lock := lockForAddress(key)
		lock.Lock()
		defer lock.Unlock()

		value, err := op()
		done <- result{value, err}
	}()

	select {
	case r := <-done:
		return r.value, Classify(r.err)
	case <-ctx.Done():
		return -1, ErrTimeout
	}
}

// ContextWithTimeout is a shorthand used by callers that do not already
// carry a deadline on their context.
func ContextWithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}
