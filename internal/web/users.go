package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
	"github.com/sidereusnuntius/gosocial/internal/federation"
	"github.com/sidereusnuntius/gosocial/internal/service"
)

func Actor(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := usernameParam(r)
		if err != nil {
			http.Error(w, "", http.StatusNotFound)
			return
		}
		actor, err := h.service.Actor(r.Context(), name)
		if err != nil {
			http.Error(w, "", HandleErr(err))
			return
		}
		WriteJSON(w, r, federation.ActivityJSON, actor)
	}
}

func Outbox(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := usernameParam(r)
		if err != nil {
			http.Error(w, "", http.StatusNotFound)
			return
		}
		outbox, err := h.service.Outbox(r.Context(), name)
		if err != nil {
			http.Error(w, "", HandleErr(err))
			return
		}
		WriteJSON(w, r, federation.ActivityJSON, outbox)
	}
}

// usernameParam returns the decoded {username} segment. chi matches on the escaped path, so the parameter may
// still carry percent-encoding.
func usernameParam(r *http.Request) (string, error) {
	return url.PathUnescape(chi.URLParam(r, "username"))
}

// HandleErr maps a service error to a status code. Only ErrNotFound is distinguished; every other failure is a
// plain 500.
func HandleErr(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func WriteJSON(w http.ResponseWriter, r *http.Request, contentType string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("unable to marshal response")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
