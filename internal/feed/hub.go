// Package feed pushes newly appended chat messages to live subscribers.
package feed

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"courtmate/backend/internal/domain/chat"
	"courtmate/backend/internal/observability"
)

const subscriberBuffer = 64

type subscriber struct {
	ch   chan chat.Message
	once sync.Once
}

// Hub fans messages out to subscribers inside this process. Slow subscribers
// whose buffer is full miss messages; history stays available from the store.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*subscriber]struct{})}
}

// Publish delivers msg to every current subscriber of its room.
func (h *Hub) Publish(_ context.Context, msg chat.Message) error {
	h.deliver(msg)
	return nil
}

func (h *Hub) deliver(msg chat.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.rooms[msg.RoomID] {
		select {
		case sub.ch <- msg:
		default:
			log.Warn().Str("room_id", msg.RoomID).Str("message_id", msg.ID).Msg("subscriber buffer full, dropping message")
		}
	}
}

// Subscribe registers a subscriber for the room. The returned cancel func, or
// cancellation of ctx, removes it and closes the channel.
func (h *Hub) Subscribe(ctx context.Context, roomID string) (<-chan chat.Message, func(), error) {
	sub := &subscriber{ch: make(chan chat.Message, subscriberBuffer)}

	h.mu.Lock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*subscriber]struct{})
	}
	h.rooms[roomID][sub] = struct{}{}
	h.mu.Unlock()
	observability.IncFeedSubscribers()

	done := make(chan struct{})
	cancel := func() {
		sub.once.Do(func() {
			close(done)
			h.remove(roomID, sub)
			observability.DecFeedSubscribers()
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	return sub.ch, cancel, nil
}

func (h *Hub) remove(roomID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rooms[roomID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.ch)
	if len(subs) == 0 {
		delete(h.rooms, roomID)
	}
}

// Subscribers returns how many live subscribers the room has.
func (h *Hub) Subscribers(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
