package wellknown

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sidereusnuntius/gosocial/internal/federation"
	"github.com/sidereusnuntius/gosocial/internal/service"
	"github.com/sidereusnuntius/gosocial/internal/web"
)

func Mount(svc service.Service, r chi.Router) {
	r.Route("/.well-known", func(r chi.Router) {
		r.Get("/webfinger", WebfingerEndpoint(svc))
	})
}

// WebfingerEndpoint answers RFC 7033 queries. Any resource that cannot be resolved, including a missing one, is a
// 404 that does not say why.
func WebfingerEndpoint(svc service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Webfinger(r.Context(), r.URL.Query().Get("resource"))
		if err != nil {
			http.Error(w, "", handleErr(err))
			return
		}

		w.Header().Set("Access-Control-Allow-Origin", "*")
		web.WriteJSON(w, r, federation.JRDJSON, res)
	}
}

func handleErr(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
