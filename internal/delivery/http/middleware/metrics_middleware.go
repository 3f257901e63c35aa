package middleware

import (
	"net/http"
	"strconv"
	"time"

	"care-registry/pkg/metrics"

	"github.com/gorilla/mux"
)

type MetricsMiddleware struct {
	collector *metrics.Collector
}

func NewMetricsMiddleware(collector *metrics.Collector) *MetricsMiddleware {
	return &MetricsMiddleware{collector: collector}
}

func (m *MetricsMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		m.collector.InFlightGauge.Inc()
		defer m.collector.InFlightGauge.Dec()

		next.ServeHTTP(rec, r)

		labels := []string{r.Method, routePath(r), strconv.Itoa(rec.status)}
		m.collector.RequestsTotal.WithLabelValues(labels...).Inc()
		m.collector.RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	})
}

// routePath uses the route template to keep label cardinality bounded
func routePath(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}
