package room_test

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtmate/backend/internal/domain/chat"
	"courtmate/backend/internal/domain/profile"
	"courtmate/backend/internal/domain/room"
)

// newFirestoreService runs the service against the Firestore emulator. The
// client picks the emulator up from FIRESTORE_EMULATOR_HOST.
func newFirestoreService(t *testing.T) (*room.Service, *room.Repo, *firestore.Client) {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("Skipping firestore test: FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "courtmate-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	repo := room.NewRepo(client)
	return room.NewService(repo).WithClock(func() time.Time { return now }), repo, client
}

func TestRepo_ConcurrentJoinsRespectCapacity(t *testing.T) {
	svc, _, _ := newFirestoreService(t)
	rm := createRoom(t, svc, player("host", profile.GenderMale), 3, 0)

	joined, full := joinConcurrently(svc, rm.ID, 5)
	assert.Equal(t, rm.Capacity()-1, joined)
	assert.Equal(t, 5-joined, full)

	counts, err := svc.ParticipantCounts(context.Background(), rm.ID)
	require.NoError(t, err)
	assert.Equal(t, rm.Capacity(), counts.Male)
}

func TestRepo_DeleteRoomLeavesNoRecords(t *testing.T) {
	svc, repo, client := newFirestoreService(t)
	ctx := context.Background()
	rm := createRoom(t, svc, player("host", profile.GenderMale), 2, 0)

	_, err := svc.Join(ctx, rm.ID, player("b", profile.GenderMale))
	require.NoError(t, err)
	msgs := chat.NewRepo(client)
	for i := 0; i < 3; i++ {
		_, err := msgs.Append(ctx, chat.Message{RoomID: rm.ID, SenderID: "b", Content: "hi", Timestamp: now.Add(time.Duration(i) * time.Second)})
		require.NoError(t, err)
	}

	require.NoError(t, svc.DeleteRoom(ctx, rm.ID, "host"))

	_, err = repo.GetRoom(ctx, rm.ID)
	assert.True(t, room.IsErrNotFound(err))

	parts, err := repo.ListParticipants(ctx, rm.ID)
	require.NoError(t, err)
	assert.Empty(t, parts)

	left, err := msgs.List(ctx, rm.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, left)

	for _, uid := range []string{"host", "b"} {
		ms, err := repo.Memberships(ctx, uid)
		require.NoError(t, err)
		assert.NotContains(t, ms, rm.ID)
	}
}

func TestRepo_BanBlocksRejoin(t *testing.T) {
	svc, repo, _ := newFirestoreService(t)
	ctx := context.Background()
	rm := createRoom(t, svc, player("host", profile.GenderMale), 4, 0)

	_, err := svc.Join(ctx, rm.ID, player("troll", profile.GenderMale))
	require.NoError(t, err)
	require.NoError(t, svc.BanParticipant(ctx, rm.ID, "host", "troll"))

	_, err = svc.Join(ctx, rm.ID, player("troll", profile.GenderMale))
	assert.True(t, room.IsErrBanned(err))

	got, err := repo.GetRoom(ctx, rm.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"troll"}, got.BannedUserIDs)

	ms, err := repo.Memberships(ctx, "troll")
	require.NoError(t, err)
	assert.NotContains(t, ms, rm.ID)
}

func TestRepo_ConfirmParticipantMirrorsMembership(t *testing.T) {
	svc, repo, _ := newFirestoreService(t)
	ctx := context.Background()
	rm := createRoom(t, svc, player("host", profile.GenderMale), 2, 0)

	_, err := svc.Join(ctx, rm.ID, player("b", profile.GenderMale))
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmParticipant(ctx, rm.ID, "host", "b"))

	p, err := repo.GetParticipant(ctx, rm.ID, "b")
	require.NoError(t, err)
	assert.True(t, p.IsConfirmed)

	ms, err := repo.Memberships(ctx, "b")
	require.NoError(t, err)
	require.Contains(t, ms, rm.ID)
	assert.True(t, ms[rm.ID].IsConfirmed)
}
