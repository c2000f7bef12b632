package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New("test")

	m.BookingCreated()
	m.BookingCreated()
	m.BookingRejected(ReasonCapacity)
	m.Transition("pending", "confirmed")
	m.Swept(3, 1)
	m.JobRun("expiry-sweeper", 10*time.Millisecond, errors.New("boom"))
	m.KafkaMessage("consume", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingsRejected.WithLabelValues(ReasonCapacity)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("pending", "confirmed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sweptBookings.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sweptBookings.WithLabelValues(ResultFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("expiry-sweeper", ResultFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.kafkaMessages.WithLabelValues("consume", ResultSuccess)))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.BookingCreated()
		m.BookingRejected(ReasonValidation)
		m.Transition("pending", "cancelled")
		m.LockContended()
		m.IntegrityViolation()
		m.Swept(1, 0)
		m.DiscountsPurged(2)
		m.JobRun("job", time.Second, nil)
		m.KafkaMessage("publish", nil)
		m.HTTPRequest(http.MethodGet, 200, time.Millisecond)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New("staybook")
	m.HTTPRequest(http.MethodPost, http.StatusCreated, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `staybook_http_requests_total{method="POST",status="201"} 1`), body)
}
