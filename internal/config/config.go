package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

type Config struct {
	ProjectID      string
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string

	// STORE_BACKEND: "firestore" (default) or "memory" for local runs without GCP.
	StoreBackend string

	SheetsSpreadsheetID string
	SheetsRange         string
	SheetsCredentials   string

	CourtsFile           string
	CourtsSeedFile       string
	CourtsSnapshotBucket string
	CourtsSnapshotObject string
	CourtsSyncInterval   time.Duration

	RedisURL     string
	AMQPURL      string
	AMQPExchange string

	OTELEndpoint string

	WSMembershipRecheck time.Duration

	BannedWords []string
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// FIREBASE_PROJECT_ID or GOOGLE_CLOUD_PROJECT
	projectID := getenv("FIREBASE_PROJECT_ID", "")
	if projectID == "" {
		projectID = getenv("GOOGLE_CLOUD_PROJECT", "")
	}

	storeBackend := strings.ToLower(getenv("STORE_BACKEND", StoreFirestore))
	if storeBackend != StoreMemory {
		storeBackend = StoreFirestore
	}

	interval, err := time.ParseDuration(getenv("COURTS_SYNC_INTERVAL", "5m"))
	if err != nil || interval <= 0 {
		interval = 5 * time.Minute
	}

	recheck, err := time.ParseDuration(getenv("WS_MEMBERSHIP_RECHECK", "30s"))
	if err != nil || recheck <= 0 {
		recheck = 30 * time.Second
	}

	return Config{
		ProjectID:      projectID,
		Port:           getenv("PORT", "8080"),
		Env:            getenv("APP_ENV", "development"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "http://localhost:3000")),
		StoreBackend:   storeBackend,

		SheetsSpreadsheetID: getenv("SHEETS_SPREADSHEET_ID", ""),
		SheetsRange:         getenv("SHEETS_RANGE", "시트1!A:J"),
		SheetsCredentials:   getenv("GOOGLE_SHEETS_CREDENTIALS", ""),

		CourtsFile:           getenv("COURTS_FILE", "var/courts_snapshot.json"),
		CourtsSeedFile:       getenv("COURTS_SEED_FILE", "data/seoul_tennis_courts.json"),
		CourtsSnapshotBucket: getenv("COURTS_SNAPSHOT_BUCKET", ""),
		CourtsSnapshotObject: getenv("COURTS_SNAPSHOT_OBJECT", "courts/seoul_tennis_courts.json"),
		CourtsSyncInterval:   interval,

		RedisURL:     getenv("REDIS_URL", ""),
		AMQPURL:      getenv("AMQP_URL", ""),
		AMQPExchange: getenv("AMQP_EXCHANGE", "courtmate.events"),

		OTELEndpoint: getenv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		WSMembershipRecheck: recheck,

		BannedWords: splitList(getenv("MODERATION_BANNED_WORDS", "")),
	}
}

func splitList(s string) []string {
	out := []string{}
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
