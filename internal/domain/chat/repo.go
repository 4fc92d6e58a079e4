package chat

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
)

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) messagesCol(roomID string) *firestore.CollectionRef {
	return r.fs.Collection("chatRooms").Doc(roomID).Collection("messages")
}

func (r *Repo) Append(ctx context.Context, msg Message) (*Message, error) {
	ref := r.messagesCol(msg.RoomID).NewDoc()
	if _, err := ref.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}
	msg.ID = ref.ID
	return &msg, nil
}

func (r *Repo) List(ctx context.Context, roomID string, limit int) ([]Message, error) {
	q := r.messagesCol(roomID).OrderBy("timestamp", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	out := make([]Message, len(docs))
	for i, doc := range docs {
		var m Message
		if err := doc.DataTo(&m); err != nil {
			return nil, fmt.Errorf("failed to decode message: %w", err)
		}
		m.ID = doc.Ref.ID
		// newest first from the query; flip to ascending
		out[len(docs)-1-i] = m
	}
	return out, nil
}
