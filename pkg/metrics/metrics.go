package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jakechorley/class-scheduler/pkg/core/solver"
)

// Solve outcomes recorded on the solves_total counter
const (
	OutcomeOK        = "ok"
	OutcomeEmpty     = "empty"
	OutcomeExhausted = "budget_exhausted"
	OutcomeCancelled = "cancelled"
	OutcomeError     = "error"
)

// Metrics owns a private Prometheus registry with solver and HTTP collectors
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	solves          *prometheus.CounterVec
	solveDuration   prometheus.Histogram
	searchNodes     prometheus.Histogram
	schedulesFound  prometheus.Histogram
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_solves_total",
		Help: "Total number of solve requests by outcome",
	}, []string{"outcome"})

	solveDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduler_solve_duration_seconds",
		Help:    "Duration of solve requests in seconds",
		Buckets: prometheus.DefBuckets,
	})

	searchNodes := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduler_search_nodes",
		Help:    "Search tree nodes visited per solve",
		Buckets: prometheus.ExponentialBuckets(1, 10, 8),
	})

	schedulesFound := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduler_schedules_found",
		Help:    "Conflict-free schedules found per solve",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	registry.MustRegister(solves, solveDuration, searchNodes, schedulesFound, requestDuration, requestTotal)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		solves:          solves,
		solveDuration:   solveDuration,
		searchNodes:     searchNodes,
		schedulesFound:  schedulesFound,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}
}

// Registry exposes the underlying registry for gathering in tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveSolve records the outcome, duration and search effort of one solve
func (m *Metrics) ObserveSolve(result *solver.Result, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.solves.WithLabelValues(Outcome(result, err)).Inc()
	m.solveDuration.Observe(duration.Seconds())
	if result != nil {
		m.searchNodes.Observe(float64(result.Stats.Nodes))
		m.schedulesFound.Observe(float64(result.Found))
	}
}

// Outcome classifies a solve for the outcome label
func Outcome(result *solver.Result, err error) string {
	switch {
	case errors.Is(err, solver.ErrBudgetExhausted):
		return OutcomeExhausted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	case err != nil:
		return OutcomeError
	case result == nil || result.Found == 0:
		return OutcomeEmpty
	default:
		return OutcomeOK
	}
}

// ObserveHTTPRequest records request metrics
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// Middleware returns gin middleware that captures request metrics
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		m.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
