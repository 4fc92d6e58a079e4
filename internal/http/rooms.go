package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"courtmate/backend/internal/domain/chat"
	"courtmate/backend/internal/domain/room"
	"courtmate/backend/internal/middleware"
)

func mountRooms(r chi.Router, d RouterDeps) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		out, err := d.RoomSvc.FetchChatRooms(r.Context())
		if err != nil {
			status, msg := mapRoomError(err)
			failErr(w, r, status, msg, err)
			return
		}
		WriteJSON(w, 200, out)
	})

	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		au, _ := middleware.GetAuthUser(r.Context())

		var in room.CreateRoomInput
		if err := decodeJSON(r, &in); err != nil {
			Fail(w, 400, "invalid json")
			return
		}

		host, err := d.ProfileSvc.GetProfile(r.Context(), au.UID)
		if err != nil {
			status, msg := mapProfileError(err)
			failErr(w, r, status, msg, err)
			return
		}

		out, err := d.RoomSvc.CreateRoom(r.Context(), in, *host)
		if err != nil {
			status, msg := mapRoomError(err)
			failErr(w, r, status, msg, err)
			return
		}
		WriteJSON(w, 201, out)
	})

	r.Route("/{roomId}", func(rr chi.Router) {
		rr.Get("/", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.RoomSvc.FetchChatRoom(r.Context(), chi.URLParam(r, "roomId"))
			if err != nil {
				status, msg := mapRoomError(err)
				failErr(w, r, status, msg, err)
				return
			}
			WriteJSON(w, 200, out)
		})

		rr.Delete("/", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			if err := d.RoomSvc.DeleteRoom(r.Context(), chi.URLParam(r, "roomId"), au.UID); err != nil {
				status, msg := mapRoomError(err)
				failErr(w, r, status, msg, err)
				return
			}
			WriteJSON(w, 200, map[string]any{"success": true})
		})

		rr.Post("/close", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			out, err := d.RoomSvc.CloseRoom(r.Context(), chi.URLParam(r, "roomId"), au.UID)
			if err != nil {
				status, msg := mapRoomError(err)
				failErr(w, r, status, msg, err)
				return
			}
			WriteJSON(w, 200, out)
		})

		rr.Post("/join", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			roomID := chi.URLParam(r, "roomId")

			me, err := d.ProfileSvc.GetProfile(r.Context(), au.UID)
			if err != nil {
				status, msg := mapProfileError(err)
				failErr(w, r, status, msg, err)
				return
			}

			part, err := d.RoomSvc.Join(r.Context(), roomID, *me)
			if room.IsErrAlreadyParticipating(err) {
				// clients treat this as "refresh my state", so hand the state back
				m, merr := d.RoomSvc.Membership(r.Context(), roomID, au.UID)
				if merr != nil {
					status, msg := mapRoomError(merr)
					failErr(w, r, status, msg, merr)
					return
				}
				WriteJSON(w, 409, map[string]any{"message": err.Error(), "membership": m})
				return
			}
			if err != nil {
				status, msg := mapRoomError(err)
				failErr(w, r, status, msg, err)
				return
			}
			WriteJSON(w, 201, map[string]any{
				"participant": part,
				"membership":  room.Membership{RoomID: roomID, IsParticipating: true},
			})
		})

		rr.Post("/leave", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			if err := d.RoomSvc.Leave(r.Context(), chi.URLParam(r, "roomId"), au.UID); err != nil {
				status, msg := mapRoomError(err)
				failErr(w, r, status, msg, err)
				return
			}
			WriteJSON(w, 200, map[string]any{"success": true})
		})

		rr.Get("/participants", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.RoomSvc.Participants(r.Context(), chi.URLParam(r, "roomId"))
			if err != nil {
				status, msg := mapRoomError(err)
				failErr(w, r, status, msg, err)
				return
			}
			WriteJSON(w, 200, out)
		})

		rr.Get("/counts", func(w http.ResponseWriter, r *http.Request) {
			out, err := d.RoomSvc.ParticipantCounts(r.Context(), chi.URLParam(r, "roomId"))
			if err != nil {
				status, msg := mapRoomError(err)
				failErr(w, r, status, msg, err)
				return
			}
			WriteJSON(w, 200, out)
		})

		rr.Post("/participants/{uid}/{action}", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			roomID := chi.URLParam(r, "roomId")
			target := chi.URLParam(r, "uid")

			var err error
			switch chi.URLParam(r, "action") {
			case "confirm":
				err = d.RoomSvc.ConfirmParticipant(r.Context(), roomID, au.UID, target)
			case "reject":
				err = d.RoomSvc.RejectParticipant(r.Context(), roomID, au.UID, target)
			case "kick":
				err = d.RoomSvc.KickParticipant(r.Context(), roomID, au.UID, target)
			case "ban":
				err = d.RoomSvc.BanParticipant(r.Context(), roomID, au.UID, target)
			default:
				Fail(w, 404, "unknown participant action")
				return
			}
			if err != nil {
				status, msg := mapRoomError(err)
				failErr(w, r, status, msg, err)
				return
			}
			WriteJSON(w, 200, map[string]any{"success": true})
		})

		rr.Get("/messages", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())
			limit, _ := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("limit")))

			out, err := d.ChatSvc.Messages(r.Context(), chi.URLParam(r, "roomId"), au.UID, limit)
			if err != nil {
				status, msg := mapChatError(err)
				failErr(w, r, status, msg, err)
				return
			}
			WriteJSON(w, 200, out)
		})

		rr.Post("/messages", func(w http.ResponseWriter, r *http.Request) {
			au, _ := middleware.GetAuthUser(r.Context())

			var in struct {
				Content string `json:"content"`
			}
			if err := decodeJSON(r, &in); err != nil {
				Fail(w, 400, "invalid json")
				return
			}

			out, err := d.ChatSvc.SendMessage(r.Context(), chi.URLParam(r, "roomId"), au.UID, in.Content)
			var rejected *chat.RejectedError
			if errors.As(err, &rejected) {
				WriteJSON(w, 422, map[string]any{"message": "message rejected by moderation", "violations": rejected.Violations})
				return
			}
			if err != nil {
				status, msg := mapChatError(err)
				failErr(w, r, status, msg, err)
				return
			}
			WriteJSON(w, 201, out)
		})

		rr.Get("/messages/ws", newMessageStream(d.ChatSvc, d.Cfg.AllowedOrigins, d.Cfg.WSMembershipRecheck).ServeHTTP)
	})
}
