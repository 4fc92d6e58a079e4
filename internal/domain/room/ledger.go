package room

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"courtmate/backend/internal/domain/profile"
	"courtmate/backend/internal/observability"
)

// admitJoin is evaluated by the store against the room and roster it read in
// the same transaction as the write.
func admitJoin(uid string) AdmitFunc {
	return func(rm Room, existing []Participant) error {
		if rm.IsBanned(uid) {
			return fmt.Errorf("%w: %s", ErrBanned, rm.ID)
		}
		for _, p := range existing {
			if p.ID == uid {
				return fmt.Errorf("%w: %s", ErrAlreadyParticipating, rm.ID)
			}
		}
		if rm.IsClosed {
			return fmt.Errorf("%w: %s", ErrRoomClosed, rm.ID)
		}
		c := countParticipants(existing)
		if c.Male+c.Female >= rm.Capacity() {
			return fmt.Errorf("%w: %d of %d seats taken", ErrRoomFull, c.Male+c.Female, rm.Capacity())
		}
		return nil
	}
}

func joinOutcome(err error) string {
	switch {
	case err == nil:
		return "joined"
	case IsErrBanned(err):
		return "banned"
	case IsErrRoomFull(err):
		return "full"
	case IsErrAlreadyParticipating(err):
		return "already_participating"
	case IsErrRoomClosed(err):
		return "closed"
	case IsErrNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}

// Join adds the user as an unconfirmed participant.
func (s *Service) Join(ctx context.Context, roomID string, p profile.UserProfile) (*Participant, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" || strings.TrimSpace(p.ID) == "" {
		return nil, fmt.Errorf("%w: roomId and uid are required", ErrBadRequest)
	}

	part := participantFromProfile(p, false, s.now())
	err := s.store.AddParticipant(ctx, roomID, part, admitJoin(p.ID))
	observability.IncRoomJoin(joinOutcome(err))
	if err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("room_id", roomID).
		Str("uid", p.ID).
		Msg("participant joined")
	return &part, nil
}

// Leave removes the caller's own record. Leaving twice is not an error.
func (s *Service) Leave(ctx context.Context, roomID, uid string) error {
	roomID = strings.TrimSpace(roomID)
	uid = strings.TrimSpace(uid)
	if roomID == "" || uid == "" {
		return fmt.Errorf("%w: roomId and uid are required", ErrBadRequest)
	}
	return s.store.RemoveParticipant(ctx, roomID, uid)
}

// ConfirmParticipant marks a participant as confirmed by the host.
func (s *Service) ConfirmParticipant(ctx context.Context, roomID, hostID, participantID string) error {
	if _, err := s.requireHost(ctx, roomID, hostID); err != nil {
		return err
	}
	if _, err := s.store.GetParticipant(ctx, roomID, participantID); err != nil {
		return err
	}
	return s.store.SetConfirmed(ctx, roomID, participantID)
}

func (s *Service) removeByHost(ctx context.Context, roomID, hostID, participantID string) error {
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return fmt.Errorf("%w: participant id is required", ErrBadRequest)
	}
	if _, err := s.requireHost(ctx, roomID, hostID); err != nil {
		return err
	}
	if participantID == hostID {
		return fmt.Errorf("%w: the host cannot remove themself", ErrBadRequest)
	}
	return s.store.RemoveParticipant(ctx, roomID, participantID)
}

// RejectParticipant removes a pending participant.
func (s *Service) RejectParticipant(ctx context.Context, roomID, hostID, participantID string) error {
	return s.removeByHost(ctx, roomID, hostID, participantID)
}

// KickParticipant removes a participant. The user may join again.
func (s *Service) KickParticipant(ctx context.Context, roomID, hostID, participantID string) error {
	return s.removeByHost(ctx, roomID, hostID, participantID)
}

// BanParticipant removes the participant and blocks future joins.
func (s *Service) BanParticipant(ctx context.Context, roomID, hostID, participantID string) error {
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return fmt.Errorf("%w: participant id is required", ErrBadRequest)
	}
	if _, err := s.requireHost(ctx, roomID, hostID); err != nil {
		return err
	}
	if participantID == hostID {
		return fmt.Errorf("%w: the host cannot ban themself", ErrBadRequest)
	}
	if err := s.store.BanParticipant(ctx, roomID, participantID); err != nil {
		return err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("room_id", roomID).
		Str("uid", participantID).
		Msg("participant banned")
	return nil
}

// Participants returns the roster, host first and then by name.
func (s *Service) Participants(ctx context.Context, roomID string) ([]Participant, error) {
	if _, err := s.FetchChatRoom(ctx, roomID); err != nil {
		return nil, err
	}
	parts, err := s.store.ListParticipants(ctx, roomID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(parts, func(i, j int) bool {
		if parts[i].IsHost != parts[j].IsHost {
			return parts[i].IsHost
		}
		return parts[i].Name < parts[j].Name
	})
	return parts, nil
}

// ParticipantCounts counts non-host participants by gender from a fresh read.
func (s *Service) ParticipantCounts(ctx context.Context, roomID string) (Counts, error) {
	parts, err := s.Participants(ctx, roomID)
	if err != nil {
		return Counts{}, err
	}
	return countParticipants(parts), nil
}

// Membership returns the user's standing in one room. A user without a record
// gets a zero Membership and no error.
func (s *Service) Membership(ctx context.Context, roomID, uid string) (Membership, error) {
	p, err := s.store.GetParticipant(ctx, roomID, uid)
	if IsErrNotFound(err) {
		return Membership{RoomID: roomID}, nil
	}
	if err != nil {
		return Membership{}, err
	}
	return membershipOf(roomID, *p), nil
}

// IsParticipant reports whether uid has a participant record in the room.
func (s *Service) IsParticipant(ctx context.Context, roomID, uid string) (bool, error) {
	m, err := s.Membership(ctx, roomID, uid)
	if err != nil {
		return false, err
	}
	return m.IsParticipating, nil
}

// SyncParticipantProfile refreshes the user's snapshot on every roster they are on.
func (s *Service) SyncParticipantProfile(ctx context.Context, p profile.UserProfile) error {
	return s.store.UpdateParticipantProfile(ctx, p)
}
