package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"courtmate/backend/internal/config"
	"courtmate/backend/internal/domain/chat"
	"courtmate/backend/internal/domain/courts"
	"courtmate/backend/internal/domain/moderation"
	"courtmate/backend/internal/domain/profile"
	"courtmate/backend/internal/domain/room"
	"courtmate/backend/internal/middleware"
	"courtmate/backend/internal/observability"
)

type RouterDeps struct {
	Cfg        config.Config
	Verifier   middleware.TokenVerifier
	ProfileSvc *profile.Service
	RoomSvc    *room.Service
	ChatSvc    *chat.Service
	Reporter   *moderation.Reporter
	Catalog    *courts.Catalog
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(observability.RequestLogger)
	r.Use(observability.HTTPMetrics)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(d.Cfg.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, 200, map[string]any{"ok": true, "ts": time.Now().UTC().Format(time.RFC3339)})
	})
	r.Handle("/metrics", observability.MetricsHandler())

	// public court catalog
	r.Route("/tennis-courts", func(cr chi.Router) {
		mountCourts(cr, d.Catalog)
	})

	// Protected routes
	r.Route("/v1", func(pr chi.Router) {
		pr.Use(middleware.WithAuth(d.Verifier))

		pr.Route("/me", func(mr chi.Router) { mountMe(mr, d) })
		pr.Route("/rooms", func(rr chi.Router) { mountRooms(rr, d) })
		pr.Route("/reports", func(rr chi.Router) { mountReports(rr, d.Reporter) })
	})

	return otelhttp.NewHandler(r, "courtmate-api")
}
