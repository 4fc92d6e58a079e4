package chat_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtmate/backend/internal/domain/chat"
)

func TestRepo_ListReturnsNewestAscending(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("Skipping firestore test: FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "courtmate-test")
	require.NoError(t, err)
	defer client.Close()

	repo := chat.NewRepo(client)
	roomID := "room-" + uuid.NewString()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	// inserted out of order so the query, not insertion, decides the order
	for _, i := range []int{3, 0, 4, 1, 2} {
		_, err := repo.Append(ctx, chat.Message{
			RoomID:      roomID,
			SenderID:    "host",
			Content:     fmt.Sprintf("m%d", i),
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
			MessageType: chat.TypeText,
		})
		require.NoError(t, err)
	}

	got, err := repo.List(ctx, roomID, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"m2", "m3", "m4"}, []string{got[0].Content, got[1].Content, got[2].Content})
	for _, m := range got {
		assert.NotEmpty(t, m.ID)
	}

	all, err := repo.List(ctx, roomID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, "m0", all[0].Content)
}
