package profile

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepo_ZeroExperienceRoundTrips(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("Skipping firestore test: FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "courtmate-test")
	require.NoError(t, err)
	defer client.Close()

	repo := NewRepo(client)
	p := Default("user-"+uuid.NewString(), time.Now().UTC())
	p.Experience = 0
	require.NoError(t, repo.Put(ctx, p))

	got, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Experience)
}
