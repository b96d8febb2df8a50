package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.ObserveIngest(OutcomeSuccess)
	m.ObserveIngest(OutcomeSuccess)
	m.ObserveIngest(OutcomeIndexError)
	m.SetIndexSize(42)
	m.ObserveRepair(3, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ingests.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ingests.WithLabelValues(OutcomeIndexError)))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.indexSize))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.repairs.WithLabelValues("repaired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.repairs.WithLabelValues("failed")))
}

func TestMetrics_SearchHistogram(t *testing.T) {
	m := New()
	m.ObserveSearch(10*time.Millisecond, nil)
	m.ObserveSearch(time.Second, errors.New("boom"))
	assert.Equal(t, 2, testutil.CollectAndCount(m.searchLatency))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveIngest(OutcomeSuccess)
		m.ObserveSearch(time.Millisecond, nil)
		m.SetIndexSize(1)
		m.ObserveRepair(1, 0)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveIngest(OutcomeSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `deepsearch_ingest_total{outcome="success"} 1`)
}
