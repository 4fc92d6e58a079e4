// Package memory is an in-process implementation of the profile, room and chat
// stores. A single lock serialises every write, which gives AddParticipant and
// the other multi-document operations the same all-or-nothing behaviour the
// Firestore repos get from transactions and batches.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"courtmate/backend/internal/domain/chat"
	"courtmate/backend/internal/domain/profile"
	"courtmate/backend/internal/domain/room"
)

type Store struct {
	mu           sync.RWMutex
	profiles     map[string]profile.UserProfile
	rooms        map[string]room.Room
	participants map[string]map[string]room.Participant // roomID -> uid
	memberships  map[string]map[string]room.Membership  // uid -> roomID
	messages     map[string][]chat.Message
}

func New() *Store {
	return &Store{
		profiles:     map[string]profile.UserProfile{},
		rooms:        map[string]room.Room{},
		participants: map[string]map[string]room.Participant{},
		memberships:  map[string]map[string]room.Membership{},
		messages:     map[string][]chat.Message{},
	}
}

// Profiles, Rooms and Messages expose the store through the narrower interfaces
// so callers can see which domain each value serves.
func (s *Store) Profiles() profile.Store { return profileStore{s} }
func (s *Store) Rooms() room.Store       { return s }
func (s *Store) Messages() chat.Store    { return messageStore{s} }

func copyRoom(r room.Room) room.Room {
	r.BannedUserIDs = append([]string{}, r.BannedUserIDs...)
	return r
}

type profileStore struct{ s *Store }

func (p profileStore) Get(_ context.Context, uid string) (*profile.UserProfile, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()

	prof, ok := p.s.profiles[uid]
	if !ok {
		return nil, fmt.Errorf("%w: profile %s", profile.ErrNotFound, uid)
	}
	return &prof, nil
}

func (p profileStore) Put(_ context.Context, prof profile.UserProfile) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	p.s.profiles[prof.ID] = prof
	return nil
}

func (s *Store) CreateRoom(_ context.Context, r room.Room, host room.Participant) (*room.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if _, exists := s.rooms[r.ID]; exists {
		return nil, fmt.Errorf("room %s already exists", r.ID)
	}
	r = copyRoom(r)
	s.rooms[r.ID] = r
	s.putParticipantLocked(r.ID, host)

	out := copyRoom(r)
	return &out, nil
}

func (s *Store) GetRoom(_ context.Context, roomID string) (*room.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: room %s", room.ErrNotFound, roomID)
	}
	out := copyRoom(r)
	return &out, nil
}

func (s *Store) ListRooms(_ context.Context) ([]room.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]room.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, copyRoom(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (s *Store) CloseRoom(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return fmt.Errorf("%w: room %s", room.ErrNotFound, roomID)
	}
	r.Status = room.StatusClosed
	r.IsClosed = true
	s.rooms[roomID] = r
	return nil
}

func (s *Store) DeleteRoom(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[roomID]; !ok {
		return fmt.Errorf("%w: room %s", room.ErrNotFound, roomID)
	}
	for uid := range s.participants[roomID] {
		s.deleteMembershipLocked(uid, roomID)
	}
	delete(s.participants, roomID)
	delete(s.rooms, roomID)
	return nil
}

func (s *Store) PurgeMessages(_ context.Context, roomID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.messages[roomID])
	delete(s.messages, roomID)
	return n, nil
}

func (s *Store) ListParticipants(_ context.Context, roomID string) ([]room.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listParticipantsLocked(roomID), nil
}

func (s *Store) listParticipantsLocked(roomID string) []room.Participant {
	out := make([]room.Participant, 0, len(s.participants[roomID]))
	for _, p := range s.participants[roomID] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) GetParticipant(_ context.Context, roomID, uid string) (*room.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.participants[roomID][uid]
	if !ok {
		return nil, fmt.Errorf("%w: participant %s", room.ErrNotFound, uid)
	}
	return &p, nil
}

func (s *Store) AddParticipant(_ context.Context, roomID string, p room.Participant, admit room.AdmitFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return fmt.Errorf("%w: room %s", room.ErrNotFound, roomID)
	}
	if admit != nil {
		if err := admit(copyRoom(r), s.listParticipantsLocked(roomID)); err != nil {
			return err
		}
	}
	s.putParticipantLocked(roomID, p)
	return nil
}

func (s *Store) putParticipantLocked(roomID string, p room.Participant) {
	if s.participants[roomID] == nil {
		s.participants[roomID] = map[string]room.Participant{}
	}
	s.participants[roomID][p.ID] = p

	if s.memberships[p.ID] == nil {
		s.memberships[p.ID] = map[string]room.Membership{}
	}
	s.memberships[p.ID][roomID] = room.Membership{
		RoomID:          roomID,
		IsParticipating: true,
		IsConfirmed:     p.IsConfirmed,
		IsHost:          p.IsHost,
	}
}

func (s *Store) deleteMembershipLocked(uid, roomID string) {
	delete(s.memberships[uid], roomID)
	if len(s.memberships[uid]) == 0 {
		delete(s.memberships, uid)
	}
}

func (s *Store) SetConfirmed(_ context.Context, roomID, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.participants[roomID][uid]
	if !ok {
		return fmt.Errorf("%w: participant %s", room.ErrNotFound, uid)
	}
	p.IsConfirmed = true
	s.putParticipantLocked(roomID, p)
	return nil
}

func (s *Store) RemoveParticipant(_ context.Context, roomID, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.participants[roomID], uid)
	s.deleteMembershipLocked(uid, roomID)
	return nil
}

func (s *Store) BanParticipant(_ context.Context, roomID, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return fmt.Errorf("%w: room %s", room.ErrNotFound, roomID)
	}
	if !r.IsBanned(uid) {
		r = copyRoom(r)
		r.BannedUserIDs = append(r.BannedUserIDs, uid)
		s.rooms[roomID] = r
	}
	delete(s.participants[roomID], uid)
	s.deleteMembershipLocked(uid, roomID)
	return nil
}

func (s *Store) Memberships(_ context.Context, uid string) (map[string]room.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]room.Membership, len(s.memberships[uid]))
	for id, m := range s.memberships[uid] {
		out[id] = m
	}
	return out, nil
}

func (s *Store) UpdateParticipantProfile(_ context.Context, prof profile.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for roomID := range s.memberships[prof.ID] {
		p, ok := s.participants[roomID][prof.ID]
		if !ok {
			continue
		}
		p.Name = prof.Name
		p.Gender = prof.Gender
		p.NTRP = prof.NTRP
		p.Experience = prof.Experience
		p.AgeGroup = prof.AgeGroup
		p.HomeCourt = prof.HomeCourt
		s.participants[roomID][prof.ID] = p
	}
	return nil
}

type messageStore struct{ s *Store }

func (m messageStore) Append(_ context.Context, msg chat.Message) (*chat.Message, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	msg.ID = uuid.NewString()
	list := m.s.messages[msg.RoomID]
	// keep ascending by timestamp; equal timestamps stay in arrival order
	i := sort.Search(len(list), func(i int) bool { return list[i].Timestamp.After(msg.Timestamp) })
	list = append(list, chat.Message{})
	copy(list[i+1:], list[i:])
	list[i] = msg
	m.s.messages[msg.RoomID] = list
	return &msg, nil
}

func (m messageStore) List(_ context.Context, roomID string, limit int) ([]chat.Message, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	list := m.s.messages[roomID]
	if limit > 0 && len(list) > limit {
		list = list[len(list)-limit:]
	}
	return append([]chat.Message{}, list...), nil
}
