package courts

import "errors"

var (
	ErrBadRequest = errors.New("bad request")
	// ErrUnavailable is returned for sheet operations when no sheet is configured.
	ErrUnavailable = errors.New("court sheet unavailable")
)

func IsErrBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

func IsErrUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
