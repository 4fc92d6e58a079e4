package profile

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Store persists profiles. Get returns ErrNotFound for unknown users.
type Store interface {
	Get(ctx context.Context, uid string) (*UserProfile, error)
	Put(ctx context.Context, p UserProfile) error
}

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) Get(ctx context.Context, uid string) (*UserProfile, error) {
	doc, err := r.fs.Collection("users").Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: profile %s", ErrNotFound, uid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	var p UserProfile
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if p.ID == "" {
		p.ID = uid
	}
	p.fillDefaults(func(field string) bool {
		_, err := doc.DataAt(field)
		return err == nil
	})
	return &p, nil
}

// Put overwrites the whole document; derived fields are tagged out.
func (r *Repo) Put(ctx context.Context, p UserProfile) error {
	if _, err := r.fs.Collection("users").Doc(p.ID).Set(ctx, p); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
