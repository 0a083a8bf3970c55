package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/class-scheduler/pkg/core/solver"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		name   string
		result *solver.Result
		err    error
		want   string
	}{
		{"found schedules", &solver.Result{Found: 3}, nil, OutcomeOK},
		{"nothing found", &solver.Result{}, nil, OutcomeEmpty},
		{"budget", &solver.Result{Found: 1}, solver.ErrBudgetExhausted, OutcomeExhausted},
		{"cancelled", nil, fmt.Errorf("failed to enumerate schedules: %w", context.Canceled), OutcomeCancelled},
		{"other error", nil, errors.New("boom"), OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.result, tt.err))
		})
	}
}

func counterValue(t *testing.T, m *Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		total := 0.0
		for _, metric := range family.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
		return total
	}
	return 0
}

func TestObserveSolve(t *testing.T) {
	m := New()
	m.ObserveSolve(&solver.Result{Found: 2, Stats: solver.Stats{Nodes: 10}}, nil, time.Millisecond)
	m.ObserveSolve(nil, errors.New("boom"), time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, m, "scheduler_solves_total"))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, counterValue(t, m, "http_requests_total"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",path="/health",status="200"} 1`)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveSolve(nil, nil, time.Second)
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Second)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
