package location

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrorKind classifies failures reported by a reading source.
type ErrorKind string

const (
	KindPermissionDenied    ErrorKind = "permission_denied"
	KindPositionUnavailable ErrorKind = "position_unavailable"
	KindTimeout             ErrorKind = "timeout"
)

var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("location information is unavailable")
	ErrTimeout             = errors.New("location request timed out")
)

// ReadingError wraps a provider failure with its classified kind.
type ReadingError struct {
	Kind ErrorKind
	Err  error
}

func (e *ReadingError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ReadingError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match a ReadingError against the sentinel of its kind.
func (e *ReadingError) Is(target error) bool {
	return target == sentinelFor(e.Kind)
}

// NewReadingError classifies err and wraps it. A nil err yields nil.
func NewReadingError(err error) *ReadingError {
	if err == nil {
		return nil
	}
	var re *ReadingError
	if errors.As(err, &re) {
		return re
	}
	return &ReadingError{Kind: KindOf(err), Err: err}
}

// KindOf maps any error to a reading error kind.
func KindOf(err error) ErrorKind {
	var re *ReadingError
	switch {
	case errors.As(err, &re):
		return re.Kind
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, os.ErrPermission):
		return KindPermissionDenied
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	default:
		return KindPositionUnavailable
	}
}

func sentinelFor(kind ErrorKind) error {
	switch kind {
	case KindPermissionDenied:
		return ErrPermissionDenied
	case KindTimeout:
		return ErrTimeout
	default:
		return ErrPositionUnavailable
	}
}
