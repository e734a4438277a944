package web

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// Mount registers the ActivityPub routes of local users.
func (h *Handler) Mount(r chi.Router) {
	r.Route(UsersPath+"/{username}", func(r chi.Router) {
		r.Get("/", Actor(h))
		r.Get(OutboxPath, Outbox(h))
	})
}

// NewRouter returns a router with request logging, panic recovery and the metrics endpoint in place. A panic in
// one request is turned into a 500 for that request only.
func NewRouter(logger zerolog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	return r
}

// SetupLogger configures the global logger: a console writer at debug level when debug is set, JSON at info
// level otherwise.
func SetupLogger(debug bool) zerolog.Logger {
	if debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel)
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	}
	return log.Logger
}
