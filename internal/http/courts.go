package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"courtmate/backend/internal/domain/courts"
	"courtmate/backend/internal/observability"
)

type courtsResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func courtsList(w http.ResponseWriter, data any, n int) {
	WriteJSON(w, http.StatusOK, courtsResponse{Success: true, Data: data, Count: &n})
}

func courtsFail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status, detail := mapCourtsError(err)
	if status >= http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("court catalog request failed")
	} else {
		msg = detail
	}
	WriteJSON(w, status, courtsResponse{Success: false, Error: msg})
}

func mountCourts(r chi.Router, catalog *courts.Catalog) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		out := catalog.Query(courts.Filter{
			Region:     strings.TrimSpace(q.Get("region")),
			Facility:   strings.TrimSpace(q.Get("facility")),
			TimePeriod: strings.TrimSpace(q.Get("timePeriod")),
			Query:      strings.TrimSpace(q.Get("q")),
		})
		courtsList(w, out, len(out))
	})

	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Courts *[]courts.TennisCourt `json:"courts"`
		}
		if err := decodeJSON(r, &body); err != nil || body.Courts == nil {
			WriteJSON(w, http.StatusBadRequest, courtsResponse{Success: false, Error: "올바른 테니스장 데이터를 제공해주세요."})
			return
		}

		if err := catalog.ReplaceAll(r.Context(), *body.Courts); err != nil {
			courtsFail(w, r, err, "구글 시트 업로드에 실패했습니다.")
			return
		}
		WriteJSON(w, http.StatusOK, courtsResponse{
			Success: true,
			Message: fmt.Sprintf("%d개의 테니스장 데이터가 업로드되었습니다.", len(*body.Courts)),
		})
	})

	r.Post("/add", func(w http.ResponseWriter, r *http.Request) {
		var court courts.TennisCourt
		if err := decodeJSON(r, &court); err != nil {
			WriteJSON(w, http.StatusBadRequest, courtsResponse{Success: false, Error: "invalid json"})
			return
		}

		if err := catalog.Add(r.Context(), court); err != nil {
			if courts.IsErrBadRequest(err) {
				WriteJSON(w, http.StatusBadRequest, courtsResponse{Success: false, Error: "시설명, 지역, 코트번호는 필수입니다."})
				return
			}
			courtsFail(w, r, err, "테니스장 추가에 실패했습니다.")
			return
		}
		court.Trim()
		WriteJSON(w, http.StatusOK, courtsResponse{
			Success: true,
			Message: fmt.Sprintf("새 테니스장이 추가되었습니다: %s - %s", court.FacilityName, court.CourtNumber),
		})
	})

	r.Get("/facilities", func(w http.ResponseWriter, r *http.Request) {
		out := catalog.Facilities()
		courtsList(w, out, len(out))
	})

	r.Get("/regions", func(w http.ResponseWriter, r *http.Request) {
		out := catalog.Regions()
		courtsList(w, out, len(out))
	})

	r.Get("/sheet", func(w http.ResponseWriter, r *http.Request) {
		info, err := catalog.SheetInfo(r.Context())
		if err != nil {
			courtsFail(w, r, err, "시트 정보를 가져올 수 없습니다.")
			return
		}
		WriteJSON(w, http.StatusOK, courtsResponse{Success: true, Data: map[string]any{
			"info":     info,
			"source":   catalog.Source(),
			"lastSync": catalog.LastSync(),
		}})
	})
}
