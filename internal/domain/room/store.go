package room

import (
	"context"

	"courtmate/backend/internal/domain/profile"
)

// AdmitFunc decides, against a consistent view of the room and its current
// participants, whether a new participant may be written.
type AdmitFunc func(r Room, existing []Participant) error

// Store is the persistence boundary for rooms, participants and the
// per-user membership index. Every method that touches more than one document
// must apply its writes atomically.
type Store interface {
	// CreateRoom writes the room, the host participant and the host index entry.
	CreateRoom(ctx context.Context, r Room, host Participant) (*Room, error)
	GetRoom(ctx context.Context, roomID string) (*Room, error)
	// ListRooms returns rooms ordered by startTime ascending.
	ListRooms(ctx context.Context) ([]Room, error)
	CloseRoom(ctx context.Context, roomID string) error
	// DeleteRoom removes the room, its participants and their index entries.
	DeleteRoom(ctx context.Context, roomID string) error
	// PurgeMessages deletes the room's messages in chunks and returns how many were removed.
	PurgeMessages(ctx context.Context, roomID string) (int, error)

	ListParticipants(ctx context.Context, roomID string) ([]Participant, error)
	GetParticipant(ctx context.Context, roomID, uid string) (*Participant, error)
	// AddParticipant runs admit and the write in one transaction. A nil admit always admits.
	AddParticipant(ctx context.Context, roomID string, p Participant, admit AdmitFunc) error
	SetConfirmed(ctx context.Context, roomID, uid string) error
	// RemoveParticipant is a no-op when the record does not exist.
	RemoveParticipant(ctx context.Context, roomID, uid string) error
	// BanParticipant removes the record if present and adds uid to bannedUserIds.
	BanParticipant(ctx context.Context, roomID, uid string) error

	Memberships(ctx context.Context, uid string) (map[string]Membership, error)
	// UpdateParticipantProfile rewrites the profile snapshot on every record of the user.
	UpdateParticipantProfile(ctx context.Context, p profile.UserProfile) error
}
