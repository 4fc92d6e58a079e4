package room

import (
	"context"
	"fmt"
	"strings"
	"time"

	"courtmate/backend/internal/domain/profile"
	"courtmate/backend/internal/observability"
)

// Service owns the room directory and the membership ledger. All host-only
// rules are enforced here, not by the store.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the time source; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) validateCreate(in CreateRoomInput) error {
	if in.CourtName == "" || in.CourtNumber == "" {
		return fmt.Errorf("%w: courtName and courtNumber are required", ErrBadRequest)
	}
	if !IsValidGameType(in.GameType) {
		return fmt.Errorf("%w: gameType must be one of %s", ErrBadRequest, strings.Join(GameTypes, ", "))
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return fmt.Errorf("%w: startTime and endTime are required", ErrBadRequest)
	}
	if !in.StartTime.Before(in.EndTime) {
		return fmt.Errorf("%w: startTime must be before endTime", ErrBadRequest)
	}
	if in.MaleCount < 0 || in.FemaleCount < 0 {
		return fmt.Errorf("%w: maleCount and femaleCount cannot be negative", ErrBadRequest)
	}
	if in.MaleCount+in.FemaleCount < 1 {
		return fmt.Errorf("%w: at least one seat is required", ErrBadRequest)
	}
	if !profile.IsValidNTRP(in.NTRP) {
		return fmt.Errorf("%w: ntrp must be between 1.0 and 7.0 in 0.5 steps", ErrBadRequest)
	}
	return nil
}

// CreateRoom validates the input and writes the room together with the host's
// participant record and membership entry.
func (s *Service) CreateRoom(ctx context.Context, in CreateRoomInput, host profile.UserProfile) (*Room, error) {
	in.Trim()
	if strings.TrimSpace(host.ID) == "" {
		return nil, fmt.Errorf("%w: host is required", ErrBadRequest)
	}
	if err := s.validateCreate(in); err != nil {
		return nil, err
	}

	now := s.now()
	date := in.Date
	if date.IsZero() {
		y, m, d := in.StartTime.Date()
		date = time.Date(y, m, d, 0, 0, 0, 0, in.StartTime.Location())
	}

	rm := Room{
		CourtName:     in.CourtName,
		CourtNumber:   in.CourtNumber,
		Date:          date.UTC(),
		StartTime:     in.StartTime.UTC(),
		EndTime:       in.EndTime.UTC(),
		GameType:      in.GameType,
		NTRP:          in.NTRP,
		MaleCount:     in.MaleCount,
		FemaleCount:   in.FemaleCount,
		HostID:        host.ID,
		BannedUserIDs: []string{},
		Status:        StatusRecruiting,
		IsClosed:      false,
		CreatedAt:     now.UTC(),
	}

	created, err := s.store.CreateRoom(ctx, rm, participantFromProfile(host, true, now))
	if err != nil {
		return nil, err
	}
	created.derive(now)

	observability.LoggerFromContext(ctx).Info().
		Str("room_id", created.ID).
		Str("host_id", host.ID).
		Msg("room created")
	return created, nil
}

// FetchChatRooms lists every room by start time.
func (s *Service) FetchChatRooms(ctx context.Context) ([]Room, error) {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range rooms {
		rooms[i].derive(now)
	}
	return rooms, nil
}

func (s *Service) FetchChatRoom(ctx context.Context, roomID string) (*Room, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return nil, fmt.Errorf("%w: roomId is required", ErrBadRequest)
	}
	rm, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	rm.derive(s.now())
	return rm, nil
}

// requireHost loads the room and checks that uid is its host.
func (s *Service) requireHost(ctx context.Context, roomID, uid string) (*Room, error) {
	rm, err := s.FetchChatRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if rm.HostID != uid {
		return nil, fmt.Errorf("%w: only the host can manage this room", ErrForbidden)
	}
	return rm, nil
}

// CloseRoom stops recruiting. There is no way to reopen a room.
func (s *Service) CloseRoom(ctx context.Context, roomID, uid string) (*Room, error) {
	rm, err := s.requireHost(ctx, roomID, uid)
	if err != nil {
		return nil, err
	}
	if rm.IsClosed {
		return rm, nil
	}
	if err := s.store.CloseRoom(ctx, rm.ID); err != nil {
		return nil, err
	}
	rm.Status = StatusClosed
	rm.IsClosed = true
	return rm, nil
}

// DeleteRoom removes the room with its roster and index entries in one step,
// then purges its messages. Calling it again for a room that is already gone
// clears any messages a failed purge left behind before reporting not found.
func (s *Service) DeleteRoom(ctx context.Context, roomID, uid string) error {
	logger := observability.LoggerFromContext(ctx)

	rm, err := s.requireHost(ctx, roomID, uid)
	if IsErrNotFound(err) {
		if n, perr := s.store.PurgeMessages(ctx, roomID); perr == nil && n > 0 {
			logger.Info().Str("room_id", roomID).Int("messages", n).Msg("purged orphaned messages")
		}
		return err
	}
	if err != nil {
		return err
	}

	if err := s.store.DeleteRoom(ctx, rm.ID); err != nil {
		return err
	}

	n, err := s.store.PurgeMessages(ctx, rm.ID)
	if err != nil {
		logger.Error().Err(err).Str("room_id", rm.ID).Int("purged", n).Msg("message purge incomplete")
		return err
	}

	logger.Info().Str("room_id", rm.ID).Int("messages", n).Msg("room deleted")
	return nil
}

// FetchUserMemberships returns the user's rooms keyed by room id.
func (s *Service) FetchUserMemberships(ctx context.Context, uid string) (map[string]Membership, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}
	return s.store.Memberships(ctx, uid)
}
