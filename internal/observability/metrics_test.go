package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics("qa")

	m.ObserveInferenceAttempt("success")
	m.ObserveInferenceAttempt("loading")
	m.ObserveInferenceAttempt("loading")
	m.ObserveRateLimited("/ask")
	m.ObserveQuestionStored()

	if got := testutil.ToFloat64(m.InferenceAttempts.WithLabelValues("loading")); got != 2 {
		t.Fatalf("loading attempts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RateLimited.WithLabelValues("/ask")); got != 1 {
		t.Fatalf("rate limited = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.QuestionsStored); got != 1 {
		t.Fatalf("questions stored = %v, want 1", got)
	}
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	a := NewMetrics("qa")
	b := NewMetrics("qa")
	a.ObserveQuestionStored()

	if got := testutil.ToFloat64(b.QuestionsStored); got != 0 {
		t.Fatalf("second registry questions stored = %v, want 0", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveInferenceAttempt("success")
	m.ObserveRateLimited("/ask")
	m.ObserveQuestionStored()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("nil Handler() status = %v, want 404", w.Code)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("qa")
	m.ObserveInferenceAttempt("failed")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Handler() status = %v, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `qa_inference_attempts_total{outcome="failed"} 1`) {
		t.Errorf("Handler() body missing inference counter:\n%s", w.Body.String())
	}
}
