package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtmate_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "courtmate_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	roomJoinsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtmate_room_joins_total",
			Help: "Room join attempts by outcome.",
		},
		[]string{"outcome"},
	)
	moderationRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtmate_moderation_rejections_total",
			Help: "Messages rejected by the moderation filter, by violation.",
		},
		[]string{"violation"},
	)
	courtRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtmate_court_catalog_refresh_total",
			Help: "Court catalog refreshes by source.",
		},
		[]string{"source"},
	)
	feedSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "courtmate_feed_subscribers",
			Help: "Number of active message feed subscribers.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		roomJoinsTotal,
		moderationRejectionsTotal,
		courtRefreshTotal,
		feedSubscribers,
	)
}

// MetricsHandler serves the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// unmatchedRoute labels requests no route matched, so arbitrary paths cannot
// grow the label set.
const unmatchedRoute = "unmatched"

// HTTPMetrics records request counts and latencies keyed by the chi route pattern.
func HTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := unmatchedRoute
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func IncRoomJoin(outcome string) { roomJoinsTotal.WithLabelValues(outcome).Inc() }
func IncModerationRejection(violation string) {
	moderationRejectionsTotal.WithLabelValues(violation).Inc()
}
func IncCourtRefresh(source string) { courtRefreshTotal.WithLabelValues(source).Inc() }
func IncFeedSubscribers()           { feedSubscribers.Inc() }
func DecFeedSubscribers()           { feedSubscribers.Dec() }
