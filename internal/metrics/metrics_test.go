package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTurnAndDispatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordTurn("crm", "answered", 20*time.Millisecond)
	m.RecordTurn("crm", "answered", 30*time.Millisecond)
	m.RecordDispatch("rms", "error", time.Millisecond)
	m.RecordFault("dispatch")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TurnsTotal.WithLabelValues("crm", "answered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DispatchTotal.WithLabelValues("rms", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FaultsTotal.WithLabelValues("dispatch")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordTurn("none", "answered", time.Second)
		m.RecordClassification("general", "keyword")
		m.RecordDispatch("rag", "ok", time.Second)
		m.RecordFault("memory")
	})
}
