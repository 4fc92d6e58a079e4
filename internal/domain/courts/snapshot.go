package courts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
)

// Snapshot keeps the last good court list so a restart without sheet access
// still serves real data.
type Snapshot interface {
	Load(ctx context.Context) ([]TennisCourt, error)
	Save(ctx context.Context, courts []TennisCourt) error
}

// FileSnapshot stores the list as a JSON array on local disk. Seed is read
// when Path does not exist yet and is never written.
type FileSnapshot struct {
	Path string
	Seed string
}

func (f FileSnapshot) Load(_ context.Context) ([]TennisCourt, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) && f.Seed != "" {
		data, err = os.ReadFile(f.Seed)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read court snapshot: %w", err)
	}
	var out []TennisCourt
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode court snapshot: %w", err)
	}
	return out, nil
}

// Save writes through a temp file so readers never see a partial snapshot.
func (f FileSnapshot) Save(_ context.Context, courts []TennisCourt) error {
	data, err := json.MarshalIndent(courts, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write court snapshot: %w", err)
	}
	return os.Rename(tmp, f.Path)
}

// GCSSnapshot stores the list as a JSON object in Cloud Storage.
type GCSSnapshot struct {
	client *storage.Client
	bucket string
	object string
}

func NewGCSSnapshot(client *storage.Client, bucket, object string) *GCSSnapshot {
	return &GCSSnapshot{client: client, bucket: bucket, object: object}
}

func (g *GCSSnapshot) Load(ctx context.Context) ([]TennisCourt, error) {
	r, err := g.client.Bucket(g.bucket).Object(g.object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("court snapshot gs://%s/%s does not exist", g.bucket, g.object)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open court snapshot: %w", err)
	}
	defer r.Close()

	var out []TennisCourt
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode court snapshot: %w", err)
	}
	return out, nil
}

func (g *GCSSnapshot) Save(ctx context.Context, courts []TennisCourt) error {
	w := g.client.Bucket(g.bucket).Object(g.object).NewWriter(ctx)
	w.ContentType = "application/json"
	if err := json.NewEncoder(w).Encode(courts); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to encode court snapshot: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to upload court snapshot: %w", err)
	}
	return nil
}
