package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("COURTS_SYNC_INTERVAL", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("COURTS_FILE", "")
	t.Setenv("COURTS_SEED_FILE", "")
	t.Setenv("WS_MEMBERSHIP_RECHECK", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreFirestore, cfg.StoreBackend)
	assert.Equal(t, 5*time.Minute, cfg.CourtsSyncInterval)
	assert.Equal(t, "시트1!A:J", cfg.SheetsRange)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.BannedWords)
	assert.Equal(t, "var/courts_snapshot.json", cfg.CourtsFile)
	assert.Equal(t, "data/seoul_tennis_courts.json", cfg.CourtsSeedFile)
	assert.Equal(t, 30*time.Second, cfg.WSMembershipRecheck)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "happy-tennis")
	t.Setenv("STORE_BACKEND", "MEMORY")
	t.Setenv("COURTS_SYNC_INTERVAL", "30s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("MODERATION_BANNED_WORDS", "foo, bar")

	cfg := Load()

	assert.Equal(t, "happy-tennis", cfg.ProjectID)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, 30*time.Second, cfg.CourtsSyncInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"foo", "bar"}, cfg.BannedWords)
}

func TestLoad_InvalidIntervalFallsBack(t *testing.T) {
	t.Setenv("COURTS_SYNC_INTERVAL", "soon")
	assert.Equal(t, 5*time.Minute, Load().CourtsSyncInterval)
}
