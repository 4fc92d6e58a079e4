package room_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtmate/backend/internal/domain/chat"
	"courtmate/backend/internal/domain/profile"
	"courtmate/backend/internal/domain/room"
	"courtmate/backend/internal/store/memory"
)

var now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func player(id, gender string) profile.UserProfile {
	p := profile.Default(id, now)
	p.Name = "player-" + id
	p.Gender = gender
	p.HomeCourt = "올림픽공원"
	return p
}

func newService(t *testing.T) (*room.Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	return room.NewService(st.Rooms()).WithClock(func() time.Time { return now }), st
}

func roomInput(male, female int) room.CreateRoomInput {
	return room.CreateRoomInput{
		CourtName:   "올림픽공원 테니스장",
		CourtNumber: "3",
		StartTime:   now.Add(24 * time.Hour),
		EndTime:     now.Add(26 * time.Hour),
		GameType:    room.GameMenDoubles,
		NTRP:        3.0,
		MaleCount:   male,
		FemaleCount: female,
	}
}

func createRoom(t *testing.T, svc *room.Service, host profile.UserProfile, male, female int) *room.Room {
	t.Helper()
	rm, err := svc.CreateRoom(context.Background(), roomInput(male, female), host)
	require.NoError(t, err)
	return rm
}

func TestCreateRoom_WritesConfirmedHost(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	rm := createRoom(t, svc, player("host", profile.GenderMale), 2, 0)
	assert.Equal(t, room.StatusRecruiting, rm.Status)
	assert.False(t, rm.IsClosed)
	assert.Empty(t, rm.BannedUserIDs)
	assert.False(t, rm.IsFinished)

	parts, err := svc.Participants(ctx, rm.ID)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.True(t, parts[0].IsHost)
	assert.True(t, parts[0].IsConfirmed)
	assert.Equal(t, room.RoleHost, parts[0].Role)

	ms, err := svc.FetchUserMemberships(ctx, "host")
	require.NoError(t, err)
	assert.Equal(t, room.Membership{RoomID: rm.ID, IsParticipating: true, IsConfirmed: true, IsHost: true}, ms[rm.ID])
}

func TestCreateRoom_Validation(t *testing.T) {
	svc, _ := newService(t)
	host := player("host", profile.GenderMale)

	tests := []struct {
		name   string
		mutate func(*room.CreateRoomInput)
	}{
		{"missing court", func(in *room.CreateRoomInput) { in.CourtName = "  " }},
		{"bad game type", func(in *room.CreateRoomInput) { in.GameType = "복식" }},
		{"end before start", func(in *room.CreateRoomInput) { in.EndTime = in.StartTime.Add(-time.Hour) }},
		{"negative count", func(in *room.CreateRoomInput) { in.FemaleCount = -1 }},
		{"no seats", func(in *room.CreateRoomInput) { in.MaleCount = 0 }},
		{"ntrp off step", func(in *room.CreateRoomInput) { in.NTRP = 3.3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := roomInput(1, 0)
			tt.mutate(&in)
			_, err := svc.CreateRoom(context.Background(), in, host)
			assert.True(t, room.IsErrBadRequest(err), "got %v", err)
		})
	}
}

func TestFetchChatRooms_OrderedByStart(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	host := player("host", profile.GenderMale)

	late := roomInput(1, 0)
	late.StartTime = now.Add(72 * time.Hour)
	late.EndTime = now.Add(73 * time.Hour)
	_, err := svc.CreateRoom(ctx, late, host)
	require.NoError(t, err)

	past := roomInput(1, 0)
	past.StartTime = now.Add(-3 * time.Hour)
	past.EndTime = now.Add(-time.Hour)
	_, err = svc.CreateRoom(ctx, past, host)
	require.NoError(t, err)

	rooms, err := svc.FetchChatRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.True(t, rooms[0].StartTime.Before(rooms[1].StartTime))
	assert.True(t, rooms[0].IsFinished)
	assert.False(t, rooms[1].IsFinished)
}

func TestJoin_SequentialNeverExceedsCapacity(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	rm := createRoom(t, svc, player("host", profile.GenderMale), 1, 1)

	_, err := svc.Join(ctx, rm.ID, player("m1", profile.GenderMale))
	require.NoError(t, err)
	_, err = svc.Join(ctx, rm.ID, player("f1", profile.GenderFemale))
	require.NoError(t, err)

	_, err = svc.Join(ctx, rm.ID, player("m2", profile.GenderMale))
	assert.True(t, room.IsErrRoomFull(err))

	counts, err := svc.ParticipantCounts(ctx, rm.ID)
	require.NoError(t, err)
	assert.Equal(t, room.Counts{Male: 1, Female: 1}, counts)
}

func TestJoin_ErrorOrder(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	rm := createRoom(t, svc, player("host", profile.GenderMale), 1, 0)

	_, err := svc.Join(ctx, "missing", player("a", profile.GenderMale))
	assert.True(t, room.IsErrNotFound(err))

	_, err = svc.Join(ctx, rm.ID, player("a", profile.GenderMale))
	require.NoError(t, err)

	// full, but an existing participant hears that they are already in
	_, err = svc.Join(ctx, rm.ID, player("a", profile.GenderMale))
	assert.True(t, room.IsErrAlreadyParticipating(err))

	_, err = svc.Join(ctx, rm.ID, player("host", profile.GenderMale))
	assert.True(t, room.IsErrAlreadyParticipating(err))
}

func TestBan_WinsRegardlessOfCapacity(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	rm := createRoom(t, svc, player("host", profile.GenderMale), 4, 0)

	_, err := svc.Join(ctx, rm.ID, player("troll", profile.GenderMale))
	require.NoError(t, err)
	require.NoError(t, svc.BanParticipant(ctx, rm.ID, "host", "troll"))

	_, err = svc.Join(ctx, rm.ID, player("troll", profile.GenderMale))
	assert.True(t, room.IsErrBanned(err))

	got, err := svc.FetchChatRoom(ctx, rm.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"troll"}, got.BannedUserIDs)

	ms, err := svc.FetchUserMemberships(ctx, "troll")
	require.NoError(t, err)
	assert.Empty(t, ms)
}

func TestKick_AllowsRejoin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	rm := createRoom(t, svc, player("host", profile.GenderMale), 2, 0)

	_, err := svc.Join(ctx, rm.ID, player("b", profile.GenderMale))
	require.NoError(t, err)
	require.NoError(t, svc.KickParticipant(ctx, rm.ID, "host", "b"))

	_, err = svc.Join(ctx, rm.ID, player("b", profile.GenderMale))
	assert.NoError(t, err)
}

func TestHostOnlyActions(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	rm := createRoom(t, svc, player("host", profile.GenderMale), 2, 0)

	_, err := svc.Join(ctx, rm.ID, player("b", profile.GenderMale))
	require.NoError(t, err)
	_, err = svc.Join(ctx, rm.ID, player("c", profile.GenderMale))
	require.NoError(t, err)

	assert.True(t, room.IsErrForbidden(svc.ConfirmParticipant(ctx, rm.ID, "c", "b")))
	assert.True(t, room.IsErrForbidden(svc.RejectParticipant(ctx, rm.ID, "c", "b")))
	assert.True(t, room.IsErrForbidden(svc.KickParticipant(ctx, rm.ID, "c", "b")))
	assert.True(t, room.IsErrForbidden(svc.BanParticipant(ctx, rm.ID, "c", "b")))
	assert.True(t, room.IsErrForbidden(svc.DeleteRoom(ctx, rm.ID, "c")))
	_, err = svc.CloseRoom(ctx, rm.ID, "c")
	assert.True(t, room.IsErrForbidden(err))

	assert.True(t, room.IsErrBadRequest(svc.KickParticipant(ctx, rm.ID, "host", "host")))
	assert.True(t, room.IsErrBadRequest(svc.BanParticipant(ctx, rm.ID, "host", "host")))
	assert.True(t, room.IsErrNotFound(svc.ConfirmParticipant(ctx, rm.ID, "host", "nobody")))

	require.NoError(t, svc.RejectParticipant(ctx, rm.ID, "host", "c"))
	parts, err := svc.Participants(ctx, rm.ID)
	require.NoError(t, err)
	assert.Len(t, parts, 2)
	assert.Equal(t, "host", parts[0].ID)
}

func TestLeave_IsIdempotent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	rm := createRoom(t, svc, player("host", profile.GenderMale), 2, 0)

	_, err := svc.Join(ctx, rm.ID, player("b", profile.GenderMale))
	require.NoError(t, err)

	require.NoError(t, svc.Leave(ctx, rm.ID, "b"))
	require.NoError(t, svc.Leave(ctx, rm.ID, "b"))

	ok, err := svc.IsParticipant(ctx, rm.ID, "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCloseRoom_BlocksJoins(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	rm := createRoom(t, svc, player("host", profile.GenderMale), 2, 0)

	closed, err := svc.CloseRoom(ctx, rm.ID, "host")
	require.NoError(t, err)
	assert.Equal(t, room.StatusClosed, closed.Status)
	assert.True(t, closed.IsClosed)

	_, err = svc.Join(ctx, rm.ID, player("b", profile.GenderMale))
	assert.True(t, room.IsErrRoomClosed(err))
}

func TestDeleteRoom_RemovesEverything(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()
	rm := createRoom(t, svc, player("host", profile.GenderMale), 2, 0)

	_, err := svc.Join(ctx, rm.ID, player("b", profile.GenderMale))
	require.NoError(t, err)
	_, err = st.Messages().Append(ctx, chat.Message{RoomID: rm.ID, SenderID: "b", Content: "hi", Timestamp: now})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRoom(ctx, rm.ID, "host"))

	_, err = svc.FetchChatRoom(ctx, rm.ID)
	assert.True(t, room.IsErrNotFound(err))

	parts, err := st.ListParticipants(ctx, rm.ID)
	require.NoError(t, err)
	assert.Empty(t, parts)

	msgs, err := st.Messages().List(ctx, rm.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	for _, uid := range []string{"host", "b"} {
		ms, err := svc.FetchUserMemberships(ctx, uid)
		require.NoError(t, err)
		assert.Empty(t, ms)
	}
}

type failingPurge struct {
	*memory.Store
	failures int
}

func (f *failingPurge) PurgeMessages(ctx context.Context, roomID string) (int, error) {
	if f.failures > 0 {
		f.failures--
		return 0, errors.New("deadline exceeded")
	}
	return f.Store.PurgeMessages(ctx, roomID)
}

func TestDeleteRoom_RetryPurgesOrphanedMessages(t *testing.T) {
	st := &failingPurge{Store: memory.New(), failures: 1}
	svc := room.NewService(st).WithClock(func() time.Time { return now })
	ctx := context.Background()
	rm := createRoom(t, svc, player("host", profile.GenderMale), 1, 0)

	_, err := st.Messages().Append(ctx, chat.Message{RoomID: rm.ID, SenderID: "host", Content: "hi", Timestamp: now})
	require.NoError(t, err)

	require.Error(t, svc.DeleteRoom(ctx, rm.ID, "host"))
	msgs, _ := st.Messages().List(ctx, rm.ID, 0)
	assert.Len(t, msgs, 1)

	err = svc.DeleteRoom(ctx, rm.ID, "host")
	assert.True(t, room.IsErrNotFound(err))
	msgs, _ = st.Messages().List(ctx, rm.ID, 0)
	assert.Empty(t, msgs)
}

func TestFetchUserMemberships_MirrorsRecords(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	r1 := createRoom(t, svc, player("host", profile.GenderMale), 2, 0)
	r2 := createRoom(t, svc, player("host", profile.GenderMale), 2, 0)

	b := player("b", profile.GenderMale)
	_, err := svc.Join(ctx, r1.ID, b)
	require.NoError(t, err)
	_, err = svc.Join(ctx, r2.ID, b)
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmParticipant(ctx, r2.ID, "host", "b"))

	ms, err := svc.FetchUserMemberships(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, map[string]room.Membership{
		r1.ID: {RoomID: r1.ID, IsParticipating: true},
		r2.ID: {RoomID: r2.ID, IsParticipating: true, IsConfirmed: true},
	}, ms)

	require.NoError(t, svc.Leave(ctx, r1.ID, "b"))
	ms, err = svc.FetchUserMemberships(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, ms, 1)
}

func TestSyncParticipantProfile(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	rm := createRoom(t, svc, player("host", profile.GenderMale), 2, 0)

	b := player("b", profile.GenderMale)
	_, err := svc.Join(ctx, rm.ID, b)
	require.NoError(t, err)

	b.Name = "Renamed"
	b.NTRP = 4.5
	require.NoError(t, svc.SyncParticipantProfile(ctx, b))

	parts, err := svc.Participants(ctx, rm.ID)
	require.NoError(t, err)
	var got room.Participant
	for _, p := range parts {
		if p.ID == "b" {
			got = p
		}
	}
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, 4.5, got.NTRP)
}

// racyStore checks capacity and writes in two separate steps, with every
// joiner passing the check before any of them writes.
type racyStore struct {
	*memory.Store
	barrier *sync.WaitGroup
}

func (r *racyStore) AddParticipant(ctx context.Context, roomID string, p room.Participant, admit room.AdmitFunc) error {
	rm, err := r.Store.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	existing, err := r.Store.ListParticipants(ctx, roomID)
	if err != nil {
		return err
	}
	if err := admit(*rm, existing); err != nil {
		return err
	}
	r.barrier.Done()
	r.barrier.Wait()
	return r.Store.AddParticipant(ctx, roomID, p, nil)
}

func joinConcurrently(svc *room.Service, roomID string, n int) (joined int, full int) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Join(context.Background(), roomID, player(string(rune('a'+i)), profile.GenderMale))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				joined++
			case room.IsErrRoomFull(err):
				full++
			}
		}(i)
	}
	wg.Wait()
	return joined, full
}

func TestJoin_UnguardedCheckThenWriteOvershoots(t *testing.T) {
	const joiners = 3
	barrier := &sync.WaitGroup{}
	barrier.Add(joiners)

	st := &racyStore{Store: memory.New(), barrier: barrier}
	svc := room.NewService(st).WithClock(func() time.Time { return now })
	rm := createRoom(t, svc, player("host", profile.GenderMale), 1, 0)

	joined, _ := joinConcurrently(svc, rm.ID, joiners)
	assert.Equal(t, joiners, joined)

	counts, err := svc.ParticipantCounts(context.Background(), rm.ID)
	require.NoError(t, err)
	assert.Greater(t, counts.Male, rm.Capacity())
}

func TestJoin_ConcurrentJoinsRespectCapacity(t *testing.T) {
	svc, _ := newService(t)
	rm := createRoom(t, svc, player("host", profile.GenderMale), 2, 0)

	joined, full := joinConcurrently(svc, rm.ID, 10)
	assert.Equal(t, 2, joined)
	assert.Equal(t, 8, full)

	counts, err := svc.ParticipantCounts(context.Background(), rm.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Male)
}

func TestScenario_HostConfirmsAfterRoomFills(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	rm := createRoom(t, svc, player("A", profile.GenderMale), 2, 0)

	_, err := svc.Join(ctx, rm.ID, player("B", profile.GenderMale))
	require.NoError(t, err)
	_, err = svc.Join(ctx, rm.ID, player("C", profile.GenderMale))
	require.NoError(t, err)

	_, err = svc.Join(ctx, rm.ID, player("D", profile.GenderMale))
	assert.True(t, room.IsErrRoomFull(err))

	require.NoError(t, svc.ConfirmParticipant(ctx, rm.ID, "A", "B"))

	ms, err := svc.FetchUserMemberships(ctx, "B")
	require.NoError(t, err)
	assert.True(t, ms[rm.ID].IsParticipating)
	assert.True(t, ms[rm.ID].IsConfirmed)

	m, err := svc.Membership(ctx, rm.ID, "C")
	require.NoError(t, err)
	assert.True(t, m.IsParticipating)
	assert.False(t, m.IsConfirmed)
}
