package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWrapHandler_countsRequests(t *testing.T) {
	m := NewMetrics()
	h := m.WrapHandler("/status", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	h.ServeHTTP(httptest.NewRecorder(), req)

	body := scrape(t, m)
	if !strings.Contains(body, `http_requests_total{route="/status",status="418"} 2`) {
		t.Errorf("scrape missing request counter; got:\n%s", body)
	}
}

func TestWrapHandler_nilMetricsStillServes(t *testing.T) {
	var m *Metrics
	called := false
	h := m.WrapHandler("/x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	if !called {
		t.Fatal("wrapped handler not called with nil metrics")
	}
}

func TestRegisterRowCounts(t *testing.T) {
	m := NewMetrics()
	m.RegisterRowCounts(func() float64 { return 3 }, func() float64 { return 7 })

	body := scrape(t, m)
	if !strings.Contains(body, "hydro_sensor_readings 3") {
		t.Errorf("scrape missing readings gauge; got:\n%s", body)
	}
	if !strings.Contains(body, "hydro_pump_pulses 7") {
		t.Errorf("scrape missing pulses gauge; got:\n%s", body)
	}
}

func TestStatusRender(t *testing.T) {
	m := NewMetrics()
	m.StatusRender()
	m.StatusRender()
	m.StatusRender()

	body := scrape(t, m)
	if !strings.Contains(body, "hydro_status_renders_total 3") {
		t.Errorf("scrape missing render counter; got:\n%s", body)
	}

	// nil receiver must be a no-op, not a panic
	var nilM *Metrics
	nilM.StatusRender()
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	b, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read scrape body: %v", err)
	}
	return string(b)
}
