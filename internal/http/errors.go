package http

import (
	"courtmate/backend/internal/domain/chat"
	"courtmate/backend/internal/domain/courts"
	"courtmate/backend/internal/domain/moderation"
	"courtmate/backend/internal/domain/profile"
	"courtmate/backend/internal/domain/room"
)

func mapProfileError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case profile.IsErrNotFound(err):
		return 404, "profile not found"
	case profile.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapRoomError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case room.IsErrBadRequest(err):
		return 400, err.Error()
	case room.IsErrForbidden(err), room.IsErrBanned(err):
		return 403, err.Error()
	case room.IsErrNotFound(err):
		return 404, err.Error()
	case room.IsErrRoomFull(err), room.IsErrRoomClosed(err), room.IsErrAlreadyParticipating(err):
		return 409, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapChatError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case chat.IsErrBadRequest(err):
		return 400, err.Error()
	case chat.IsErrForbidden(err):
		return 403, err.Error()
	case chat.IsErrNotFound(err), chat.IsErrProfileNotFound(err):
		return 404, err.Error()
	case chat.IsErrContentRejected(err):
		return 422, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapModerationError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	if moderation.IsErrBadRequest(err) {
		return 400, err.Error()
	}
	return 500, err.Error()
}

func mapCourtsError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case courts.IsErrBadRequest(err):
		return 400, err.Error()
	case courts.IsErrUnavailable(err):
		return 503, err.Error()
	default:
		return 500, err.Error()
	}
}
