package mid

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/simwallet/foundation/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "simwallet",
		Subsystem: "viewer",
		Name:      "requests_total",
		Help:      "Count of requests handled by the viewer.",
	}, []string{"method", "status"})
	duration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "simwallet",
		Subsystem: "viewer",
		Name:      "request_duration_seconds",
		Help:      "Duration of requests handled by the viewer.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
	failures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "simwallet",
		Subsystem: "viewer",
		Name:      "errors_total",
		Help:      "Count of requests that returned an error.",
	})
	panics = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "simwallet",
		Subsystem: "viewer",
		Name:      "panics_total",
		Help:      "Count of recovered panics.",
	})
)

// Metrics updates program counters.
func Metrics() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			started := time.Now()

			err := handler(ctx, w, r)

			status := http.StatusOK
			if v, verr := web.GetValues(ctx); verr == nil && v.StatusCode != 0 {
				status = v.StatusCode
			}

			requests.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
			duration.WithLabelValues(r.Method).Observe(time.Since(started).Seconds())

			if err != nil {
				failures.Inc()
			}

			return err
		}

		return h
	}

	return m
}
