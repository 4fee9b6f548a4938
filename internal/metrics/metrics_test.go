package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.Completion("right_answer", "success")
	m.Completion("right_answer", "success")
	m.Completion("path", "fail")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.completions.WithLabelValues("right_answer", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.completions.WithLabelValues("path", "fail")))

	m.RatingRebuild("lazy", 10*time.Millisecond, 42)
	assert.Equal(t, 42.0, testutil.ToFloat64(m.ratingUsers))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Completion("x", "y")
		m.Review("approve")
		m.RatingRebuild("lazy", time.Second, 1)
		m.HTTPRequest("GET", "/", "200", time.Millisecond)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.HTTPRequest("GET", "/api/v1/missions", "200", 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "radruga_http_requests_total"))
}
