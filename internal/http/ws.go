package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"courtmate/backend/internal/domain/chat"
	"courtmate/backend/internal/middleware"
	"courtmate/backend/internal/observability"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10

	defaultMembershipRecheck = 30 * time.Second
)

type streamEvent struct {
	Type    string        `json:"type"`
	Message *chat.Message `json:"message,omitempty"`
}

// messageStream replays a room's history over a websocket and then pushes
// every new message until the client goes away.
type messageStream struct {
	chat     *chat.Service
	upgrader websocket.Upgrader
	// recheck is how often an open stream confirms the user is still on the
	// roster. Kicked, banned and departed users are disconnected.
	recheck time.Duration
}

func newMessageStream(chatSvc *chat.Service, allowedOrigins []string, recheck time.Duration) *messageStream {
	if recheck <= 0 {
		recheck = defaultMembershipRecheck
	}
	allowed := map[string]bool{}
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &messageStream{
		chat:    chatSvc,
		recheck: recheck,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed["*"] || allowed[origin]
			},
		},
	}
}

func (s *messageStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	au, _ := middleware.GetAuthUser(r.Context())
	roomID := chi.URLParam(r, "roomId")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// subscribe before reading history so nothing falls between the two
	live, unsubscribe, err := s.chat.Subscribe(ctx, roomID, au.UID)
	if err != nil {
		status, msg := mapChatError(err)
		failErr(w, r, status, msg, err)
		return
	}
	defer unsubscribe()

	history, err := s.chat.Messages(ctx, roomID, au.UID, 0)
	if err != nil {
		status, msg := mapChatError(err)
		failErr(w, r, status, msg, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	logger := observability.LoggerFromContext(ctx).With().Str("room_id", roomID).Str("uid", au.UID).Logger()
	logger.Debug().Msg("ws connected")

	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Debug().Err(err).Msg("ws read ended")
				}
				return
			}
		}
	}()

	write := func(ev streamEvent) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(ev)
	}

	seen := make(map[string]struct{}, len(history))
	for i := range history {
		seen[history[i].ID] = struct{}{}
		if err := write(streamEvent{Type: "message", Message: &history[i]}); err != nil {
			return
		}
	}
	if err := write(streamEvent{Type: "ready"}); err != nil {
		return
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	membership := time.NewTicker(s.recheck)
	defer membership.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(wsWriteWait))
			return
		case msg, ok := <-live:
			if !ok {
				return
			}
			if _, dup := seen[msg.ID]; dup {
				continue
			}
			if err := write(streamEvent{Type: "message", Message: &msg}); err != nil {
				logger.Debug().Err(err).Msg("ws write failed")
				return
			}
		case <-membership.C:
			err := s.chat.CanRead(ctx, roomID, au.UID)
			if chat.IsErrForbidden(err) || chat.IsErrNotFound(err) {
				logger.Info().Err(err).Msg("ws closed, user left the room")
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "no longer a participant"),
					time.Now().Add(wsWriteWait))
				return
			}
			if err != nil {
				logger.Warn().Err(err).Msg("ws membership check failed")
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
