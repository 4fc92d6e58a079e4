package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"courtmate/backend/internal/domain/profile"
	"courtmate/backend/internal/domain/room"
	"courtmate/backend/internal/middleware"
)

func mountMe(r chi.Router, d RouterDeps) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		WriteJSON(w, 200, map[string]any{
			"uid":    au.UID,
			"email":  au.Email,
			"claims": au.Claims,
			"admin":  middleware.IsAdmin(au.Claims),
		})
	})

	r.Get("/profile", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		out, err := d.ProfileSvc.GetProfile(r.Context(), au.UID)
		if err != nil {
			status, msg := mapProfileError(err)
			failErr(w, r, status, msg, err)
			return
		}
		WriteJSON(w, 200, out)
	})

	// called once after sign-up; returns the stored profile on repeats
	r.Post("/profile", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		out, created, err := d.ProfileSvc.EnsureProfile(r.Context(), au.UID)
		if err != nil {
			status, msg := mapProfileError(err)
			failErr(w, r, status, msg, err)
			return
		}
		status := 200
		if created {
			status = 201
		}
		WriteJSON(w, status, out)
	})

	r.Put("/profile", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())

		var in profile.UpdateProfileInput
		if err := decodeJSON(r, &in); err != nil {
			Fail(w, 400, "invalid json")
			return
		}

		out, err := d.ProfileSvc.UpdateProfile(r.Context(), au.UID, in)
		if err != nil {
			status, msg := mapProfileError(err)
			failErr(w, r, status, msg, err)
			return
		}
		WriteJSON(w, 200, out)
	})

	r.Get("/memberships", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())
		out, err := d.RoomSvc.FetchUserMemberships(r.Context(), au.UID)
		if err != nil {
			status, msg := mapRoomError(err)
			failErr(w, r, status, msg, err)
			return
		}
		if out == nil {
			out = map[string]room.Membership{}
		}
		WriteJSON(w, 200, out)
	})
}
