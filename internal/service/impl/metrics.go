package impl

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sidereusnuntius/gosocial/internal/service"
)

var resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gosocial_resolutions_total",
	Help: "Number of actor, webfinger and outbox resolutions, by outcome.",
}, []string{"kind", "result"})

func observe(kind string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, service.ErrNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	resolutions.WithLabelValues(kind, result).Inc()
}
