package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"courtmate/backend/internal/domain/moderation"
	"courtmate/backend/internal/middleware"
)

func mountReports(r chi.Router, reporter *moderation.Reporter) {
	r.Post("/users", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())

		var in moderation.ReportUserInput
		if err := decodeJSON(r, &in); err != nil {
			Fail(w, 400, "invalid json")
			return
		}
		out, err := reporter.ReportUser(r.Context(), au.UID, in)
		if err != nil {
			status, msg := mapModerationError(err)
			failErr(w, r, status, msg, err)
			return
		}
		WriteJSON(w, 202, out)
	})

	r.Post("/messages", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())

		var in moderation.ReportMessageInput
		if err := decodeJSON(r, &in); err != nil {
			Fail(w, 400, "invalid json")
			return
		}
		out, err := reporter.ReportMessage(r.Context(), au.UID, in)
		if err != nil {
			status, msg := mapModerationError(err)
			failErr(w, r, status, msg, err)
			return
		}
		WriteJSON(w, 202, out)
	})
}
