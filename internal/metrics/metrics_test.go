package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ExpenseApplied("equal")
	m.ExpenseApplied("equal")
	m.ExpenseApplied("percent")
	m.SettlementRecorded()
	m.SplitRejected("fancy", false)
	m.SplitRejected("amounts", true)
	m.ObserveLedger(3)

	if got := testutil.ToFloat64(m.expenses.WithLabelValues("equal")); got != 2 {
		t.Errorf("equal expenses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.settlements); got != 1 {
		t.Errorf("settlements = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.rejected.WithLabelValues("unknown")); got != 1 {
		t.Errorf("unknown rejections = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ExpenseApplied("equal")
	m.SettlementRecorded()
	m.SplitRejected("x", false)
	m.ObserveLedger(1)
}

func TestHandlerExposesInstruments(t *testing.T) {
	m := New()
	m.SettlementRecorded()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "splitsmart_settlements_total 1") {
		t.Errorf("metrics output missing settlement counter:\n%s", body)
	}
}
