package chat

import (
	"context"
	"time"
)

const (
	TypeText   = "text"
	TypeSystem = "system"
	TypeJoin   = "join"
	TypeLeave  = "leave"

	MaxContentRunes = 500
	DefaultLimit    = 500
)

// Message is stored at chatRooms/{roomId}/messages/{id} and never changes
// after it is written.
type Message struct {
	ID          string    `firestore:"-" json:"id"`
	RoomID      string    `firestore:"roomId" json:"roomId"`
	SenderID    string    `firestore:"senderId" json:"senderId"`
	SenderName  string    `firestore:"senderName" json:"senderName"`
	Content     string    `firestore:"content" json:"content"`
	Timestamp   time.Time `firestore:"timestamp" json:"timestamp"`
	MessageType string    `firestore:"messageType" json:"messageType"`
}

type Store interface {
	// Append assigns the id and returns the stored message.
	Append(ctx context.Context, msg Message) (*Message, error)
	// List returns the newest limit messages in ascending timestamp order.
	List(ctx context.Context, roomID string, limit int) ([]Message, error)
}

// Feed fans new messages out to live subscribers of a room.
type Feed interface {
	Publish(ctx context.Context, msg Message) error
	// Subscribe returns a channel of messages for the room and a cancel func
	// that detaches only this subscriber and closes the channel.
	Subscribe(ctx context.Context, roomID string) (<-chan Message, func(), error)
}
