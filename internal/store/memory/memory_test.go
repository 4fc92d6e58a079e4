package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtmate/backend/internal/domain/chat"
	"courtmate/backend/internal/domain/room"
)

func TestMessages_OrderedByTimestamp(t *testing.T) {
	ctx := context.Background()
	msgs := New().Messages()
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	for i, offset := range []time.Duration{2 * time.Minute, 0, time.Minute, time.Minute} {
		_, err := msgs.Append(ctx, chat.Message{RoomID: "r1", Content: string(rune('a' + i)), Timestamp: base.Add(offset)})
		require.NoError(t, err)
	}

	all, err := msgs.List(ctx, "r1", 0)
	require.NoError(t, err)
	var got []string
	for _, m := range all {
		got = append(got, m.Content)
	}
	assert.Equal(t, []string{"b", "c", "d", "a"}, got)

	last, err := msgs.List(ctx, "r1", 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "d", last[0].Content)
	assert.Equal(t, "a", last[1].Content)
}

func TestRooms_BanAndDeleteClearMembershipIndex(t *testing.T) {
	ctx := context.Background()
	st := New()
	rooms := st.Rooms()

	r, err := rooms.CreateRoom(ctx, room.Room{MaleCount: 2}, room.Participant{ID: "host", IsHost: true, IsConfirmed: true})
	require.NoError(t, err)
	require.NoError(t, rooms.AddParticipant(ctx, r.ID, room.Participant{ID: "u1"}, nil))
	require.NoError(t, rooms.AddParticipant(ctx, r.ID, room.Participant{ID: "u2"}, nil))

	require.NoError(t, rooms.BanParticipant(ctx, r.ID, "u1"))
	ms, err := rooms.Memberships(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, ms)

	got, err := rooms.GetRoom(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, got.BannedUserIDs)

	// callers cannot mutate stored state through returned copies
	got.BannedUserIDs[0] = "someone-else"
	again, err := rooms.GetRoom(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, again.IsBanned("u1"))

	require.NoError(t, rooms.DeleteRoom(ctx, r.ID))
	for _, uid := range []string{"host", "u2"} {
		ms, err := rooms.Memberships(ctx, uid)
		require.NoError(t, err)
		assert.Empty(t, ms, uid)
	}
	_, err = rooms.GetRoom(ctx, r.ID)
	assert.True(t, room.IsErrNotFound(err))
}

func TestRooms_AdmitRejectionLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	rooms := New().Rooms()

	r, err := rooms.CreateRoom(ctx, room.Room{MaleCount: 1}, room.Participant{ID: "host", IsHost: true})
	require.NoError(t, err)

	err = rooms.AddParticipant(ctx, r.ID, room.Participant{ID: "u1"}, func(room.Room, []room.Participant) error {
		return room.ErrRoomFull
	})
	require.ErrorIs(t, err, room.ErrRoomFull)

	ps, err := rooms.ListParticipants(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, ps, 1)
	ms, err := rooms.Memberships(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, ms)
}
