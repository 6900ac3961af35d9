package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("preprocess", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("preprocess", ResultSuccess)
	pr.IncBuildOutcome("success")
	pr.IncPageResult(PageWritten)
	pr.IncLinks(true)
	pr.SetDiagnostics(2)
	// Basic scrape to ensure metrics encode without panic
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "ssio_page_results_total" {
			found = true
		}
	}
	if !found {
		t.Fatalf("ssio_page_results_total not gathered")
	}
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.SetDiagnostics(3)
	path := filepath.Join(t.TempDir(), "ssio.prom")
	if err := pr.WriteTextfile(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "ssio_diagnostics 3") {
		t.Fatalf("textfile missing gauge:\n%s", data)
	}
}

func TestHTTPHandler(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncBuildOutcome("success")
	rec := httptest.NewRecorder()
	HTTPHandler(pr.Registry()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ssio_build_outcomes_total") {
		t.Fatalf("missing counter in body")
	}
}
