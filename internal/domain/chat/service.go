package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"courtmate/backend/internal/domain/moderation"
	"courtmate/backend/internal/domain/profile"
	"courtmate/backend/internal/domain/room"
	"courtmate/backend/internal/observability"
)

// Rooms is the part of the room service the message log depends on.
type Rooms interface {
	FetchChatRoom(ctx context.Context, roomID string) (*room.Room, error)
	IsParticipant(ctx context.Context, roomID, uid string) (bool, error)
}

// Profiles resolves sender names.
type Profiles interface {
	GetProfile(ctx context.Context, uid string) (*profile.UserProfile, error)
}

type Service struct {
	store    Store
	feed     Feed
	rooms    Rooms
	profiles Profiles
	filter   *moderation.Filter
	now      func() time.Time
}

func NewService(store Store, feed Feed, rooms Rooms, profiles Profiles, filter *moderation.Filter) *Service {
	return &Service{
		store:    store,
		feed:     feed,
		rooms:    rooms,
		profiles: profiles,
		filter:   filter,
		now:      time.Now,
	}
}

// requireParticipant checks that the room exists and uid is on its roster.
func (s *Service) requireParticipant(ctx context.Context, roomID, uid string) error {
	if _, err := s.rooms.FetchChatRoom(ctx, roomID); err != nil {
		if room.IsErrNotFound(err) {
			return fmt.Errorf("%w: room %s", ErrNotFound, roomID)
		}
		return err
	}
	ok, err := s.rooms.IsParticipant(ctx, roomID, uid)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: not a participant of this room", ErrForbidden)
	}
	return nil
}

// CanRead reports whether uid may still read the room. Long-lived streams
// call it again after the initial subscribe.
func (s *Service) CanRead(ctx context.Context, roomID, uid string) error {
	return s.requireParticipant(ctx, roomID, uid)
}

// SendMessage stores a text message and pushes it to live subscribers.
// Content that trips the moderation filter is rejected and nothing is stored.
func (s *Service) SendMessage(ctx context.Context, roomID, senderID, content string) (*Message, error) {
	roomID = strings.TrimSpace(roomID)
	content = strings.TrimSpace(content)

	if roomID == "" || senderID == "" {
		return nil, fmt.Errorf("%w: roomId and senderId are required", ErrBadRequest)
	}
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrBadRequest)
	}
	if utf8.RuneCountInString(content) > MaxContentRunes {
		return nil, fmt.Errorf("%w: content exceeds %d characters", ErrBadRequest, MaxContentRunes)
	}

	if err := s.requireParticipant(ctx, roomID, senderID); err != nil {
		return nil, err
	}

	sender, err := s.profiles.GetProfile(ctx, senderID)
	if err != nil {
		if profile.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, senderID)
		}
		return nil, err
	}

	if res := s.filter.Check(content); !res.IsClean {
		for _, v := range res.Violations {
			observability.IncModerationRejection(v)
		}
		return nil, &RejectedError{Violations: res.Violations}
	}

	msg, err := s.store.Append(ctx, Message{
		RoomID:      roomID,
		SenderID:    senderID,
		SenderName:  sender.Name,
		Content:     content,
		Timestamp:   s.now().UTC(),
		MessageType: TypeText,
	})
	if err != nil {
		return nil, err
	}

	if s.feed != nil {
		if err := s.feed.Publish(ctx, *msg); err != nil {
			// the message is stored; late subscribers still see it in history
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("room_id", roomID).Msg("feed publish failed")
		}
	}
	return msg, nil
}

// Messages returns the room history in ascending timestamp order.
func (s *Service) Messages(ctx context.Context, roomID, uid string, limit int) ([]Message, error) {
	if err := s.requireParticipant(ctx, roomID, uid); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}
	return s.store.List(ctx, roomID, limit)
}

// Subscribe attaches a live subscriber to the room feed.
func (s *Service) Subscribe(ctx context.Context, roomID, uid string) (<-chan Message, func(), error) {
	if err := s.requireParticipant(ctx, roomID, uid); err != nil {
		return nil, nil, err
	}
	if s.feed == nil {
		return nil, nil, fmt.Errorf("%w: live feed is not available", ErrBadRequest)
	}
	return s.feed.Subscribe(ctx, roomID)
}
