package chat

import (
	"errors"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrBadRequest      = errors.New("bad request")
	ErrForbidden       = errors.New("forbidden")
	ErrProfileNotFound = errors.New("profile not found")
	ErrContentRejected = errors.New("content rejected")
)

// RejectedError carries the moderation violations behind ErrContentRejected.
type RejectedError struct {
	Violations []string
}

func (e *RejectedError) Error() string {
	return ErrContentRejected.Error() + ": " + strings.Join(e.Violations, ", ")
}

func (e *RejectedError) Unwrap() error {
	return ErrContentRejected
}

func IsErrNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsErrBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

func IsErrForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsErrProfileNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound)
}

func IsErrContentRejected(err error) bool {
	return errors.Is(err, ErrContentRejected)
}
