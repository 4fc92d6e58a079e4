package room

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrBadRequest           = errors.New("bad request")
	ErrForbidden            = errors.New("forbidden")
	ErrBanned               = errors.New("banned from room")
	ErrRoomFull             = errors.New("room is full")
	ErrRoomClosed           = errors.New("room is closed")
	ErrAlreadyParticipating = errors.New("already participating")
)

func IsErrNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsErrBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

func IsErrForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsErrBanned(err error) bool {
	return errors.Is(err, ErrBanned)
}

func IsErrRoomFull(err error) bool {
	return errors.Is(err, ErrRoomFull)
}

func IsErrRoomClosed(err error) bool {
	return errors.Is(err, ErrRoomClosed)
}

func IsErrAlreadyParticipating(err error) bool {
	return errors.Is(err, ErrAlreadyParticipating)
}
