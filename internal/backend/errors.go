package backend

import (
	"context"
	"errors"
	"os"
)

var (
	// ErrUnavailable indicates that the target path or address does not
	// exist or the backend is unreachable.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrPermissionDenied indicates missing privileges to touch the backend.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrOutOfRange indicates a duty value outside the declared safe range.
	// Values rejected with this error never reach hardware.
	ErrOutOfRange = errors.New("duty value out of range")
	// ErrTimeout indicates that a backend operation did not complete within
	// its bounded timeout.
	ErrTimeout = errors.New("backend operation timed out")
	// ErrVerificationMismatch indicates that a write was accepted but a
	// subsequent read-back disagreed with the written value.
	ErrVerificationMismatch = errors.New("verification mismatch")
)

// Classify maps raw I/O errors onto the backend error taxonomy.
// Errors that already carry a taxonomy sentinel are passed through.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrUnavailable),
		errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrOutOfRange),
		errors.Is(err, ErrTimeout),
		errors.Is(err, ErrVerificationMismatch):
		return err
	case os.IsNotExist(err):
		return ErrUnavailable
	case os.IsPermission(err):
		return ErrPermissionDenied
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	}
	return err
}
