package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"courtmate/backend/internal/domain/chat"
)

// ChannelName is the Redis pub/sub channel carrying a room's messages.
func ChannelName(roomID string) string {
	return "courtmate:rooms:" + roomID + ":messages"
}

// RedisFeed publishes through Redis so every API instance sees every message,
// and delivers what it receives into a local Hub. One Redis subscription is
// held per room while the room has local subscribers.
type RedisFeed struct {
	client *redis.Client
	hub    *Hub

	mu   sync.Mutex
	subs map[string]*redis.PubSub

	ctx    context.Context
	cancel context.CancelFunc
}

func NewRedisFeed(client *redis.Client) *RedisFeed {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisFeed{
		client: client,
		hub:    NewHub(),
		subs:   make(map[string]*redis.PubSub),
		ctx:    ctx,
		cancel: cancel,
	}
}

// NewRedisClient parses a redis:// URL and checks connectivity.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (f *RedisFeed) Publish(ctx context.Context, msg chat.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := f.client.Publish(ctx, ChannelName(msg.RoomID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context, roomID string) (<-chan chat.Message, func(), error) {
	f.mu.Lock()
	if _, ok := f.subs[roomID]; !ok {
		ps := f.client.Subscribe(f.ctx, ChannelName(roomID))
		// wait for the subscription so a publish right after Subscribe is not lost
		if _, err := ps.Receive(ctx); err != nil {
			f.mu.Unlock()
			_ = ps.Close()
			return nil, nil, fmt.Errorf("failed to subscribe to room feed: %w", err)
		}
		f.subs[roomID] = ps
		go f.receive(roomID, ps)
	}
	// attach under f.mu so a concurrent release cannot drop the fresh subscription
	ch, hubCancel, err := f.hub.Subscribe(ctx, roomID)
	f.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}

	var once sync.Once
	done := make(chan struct{})
	cancel := func() {
		once.Do(func() {
			close(done)
			hubCancel()
			f.release(roomID)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return ch, cancel, nil
}

func (f *RedisFeed) receive(roomID string, ps *redis.PubSub) {
	ch := ps.Channel()
	for {
		select {
		case <-f.ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			var msg chat.Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				log.Warn().Err(err).Str("room_id", roomID).Msg("dropping malformed feed payload")
				continue
			}
			f.hub.deliver(msg)
		}
	}
}

// release drops the Redis subscription once the room has no local subscribers.
func (f *RedisFeed) release(roomID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.hub.Subscribers(roomID) > 0 {
		return
	}
	if ps, ok := f.subs[roomID]; ok {
		_ = ps.Close()
		delete(f.subs, roomID)
	}
}

func (f *RedisFeed) Close() error {
	f.cancel()

	f.mu.Lock()
	defer f.mu.Unlock()
	for roomID, ps := range f.subs {
		_ = ps.Close()
		delete(f.subs, roomID)
	}
	return f.client.Close()
}
